package gemini

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"
)

// リトライポリシー。過負荷時の指数バックオフ + ジッターなのだ。
const (
	maxRetries     = 4
	initialBackoff = 2 * time.Second
	jitterRange    = 500 * time.Millisecond
)

// isRetryable は一時的な過負荷・レート制限によるエラーかどうかを判定します。
// それ以外（認証エラー、不正リクエスト等）は即座に失敗扱いとするのだ。
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code == 503 {
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "UNAVAILABLE")
}

// backoffDuration は attempt 回目（0始まり）の失敗後に待つ時間を返すのだ。
// 2s, 4s, 8s, ... にランダムなジッターを加えます。
func backoffDuration(attempt int) time.Duration {
	base := initialBackoff << attempt
	jitter := time.Duration(rand.Int63n(int64(jitterRange)))
	return base + jitter
}

// sleepContext はコンテキストのキャンセルを尊重して待機します。
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry は fn を最大 maxRetries+1 回実行します。
// リトライ可能なエラーのみバックオフして再試行し、それ以外は即座に返すのだ。
func (c *Client) withRetry(ctx context.Context, label string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		wait := backoffDuration(attempt)
		slog.Warn("モデルが過負荷のようなのでリトライするのだ",
			"label", label,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"wait", wait,
			"error", lastErr,
		)
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return lastErr
}
