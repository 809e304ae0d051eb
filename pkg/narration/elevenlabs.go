package narration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// ElevenLabs の既定値。キッズ向けに聞き取りやすい声を選んであるのだ。
const (
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_v3"

	defaultBaseURL     = "https://api.elevenlabs.io"
	defaultHTTPTimeout = 90 * time.Second

	minSpeed = 0.5
	maxSpeed = 2.0
)

// 音声エンドポイントのリトライポリシー。ゲートウェイ側と同じ方針なのだ。
const (
	ttsMaxRetries     = 4
	ttsInitialBackoff = 2 * time.Second
	ttsJitterRange    = 500 * time.Millisecond
)

// VoiceParams は合成1回分の指定です。ゼロ値は既定値に解決されるのだ。
type VoiceParams struct {
	VoiceID string
	ModelID string
	Speed   float64 // 読み上げ速度。0.5〜2.0にクランプされる
}

// voiceSettings は ElevenLabs API の voice_settings ペイロードです。
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

// defaultVoiceSettings は読み聞かせ向けのチューニング済み設定なのだ。
// Style 高めで抑揚を付け、表現マーカーを拾いやすくしている。
func defaultVoiceSettings(speed float64) voiceSettings {
	return voiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.65,
		UseSpeakerBoost: true,
		Speed:           clampSpeed(speed),
	}
}

func clampSpeed(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	if speed < minSpeed {
		return minSpeed
	}
	if speed > maxSpeed {
		return maxSpeed
	}
	return speed
}

// ElevenLabsClient は ElevenLabs の音声合成 REST API クライアントです。
type ElevenLabsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	sleep func(ctx context.Context, d time.Duration) error
}

// ElevenLabsOption はクライアントの生成時設定です。
type ElevenLabsOption func(*ElevenLabsClient)

// WithBaseURL はエンドポイントを差し替えます（テスト用）。
func WithBaseURL(baseURL string) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient は HTTP クライアントを差し替えます。
func WithHTTPClient(client *http.Client) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewElevenLabsClient はクライアントを生成します。
// 音声合成は重いので、タイムアウトはテキスト生成より長めなのだ。
func NewElevenLabsClient(apiKey string, opts ...ElevenLabsOption) *ElevenLabsClient {
	c := &ElevenLabsClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

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

func resolveVoiceParams(params VoiceParams) VoiceParams {
	if params.VoiceID == "" {
		params.VoiceID = DefaultVoiceID
	}
	if params.ModelID == "" {
		params.ModelID = DefaultModelID
	}
	return params
}

// timestampResponse は with-timestamps エンドポイントの応答ボディです。
type timestampResponse struct {
	AudioBase64 string                    `json:"audio_base64"`
	Alignment   domain.CharacterAlignment `json:"alignment"`
}

// SynthesizeWithTimestamps はテキストを合成し、音声と文字単位の
// タイムスタンプを返します。Synthesizer インターフェースの実装なのだ。
func (c *ElevenLabsClient) SynthesizeWithTimestamps(ctx context.Context, text string, params VoiceParams) (*SynthesisResult, error) {
	params = resolveVoiceParams(params)
	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", c.baseURL, params.VoiceID)

	body, err := c.postJSON(ctx, url, map[string]any{
		"text":           text,
		"model_id":       params.ModelID,
		"voice_settings": defaultVoiceSettings(params.Speed),
	})
	if err != nil {
		return nil, err
	}

	var resp timestampResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("音声応答のデコードに失敗したのだ: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("音声データのbase64が不正なのだ: %w", err)
	}
	if len(resp.Alignment.Characters) == 0 {
		return nil, fmt.Errorf("文字タイムスタンプが応答に含まれていないのだ")
	}

	return &SynthesisResult{
		Audio:     audio,
		MIMEType:  "audio/mpeg",
		Alignment: resp.Alignment,
	}, nil
}

// Synthesize はタイムスタンプ無しの素の音声合成です。
// 単語ハイライトが不要な用途向けなのだ。
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	params = resolveVoiceParams(params)
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, params.VoiceID)

	return c.postJSON(ctx, url, map[string]any{
		"text":           text,
		"model_id":       params.ModelID,
		"voice_settings": defaultVoiceSettings(params.Speed),
	})
}

// postJSON はリトライ付きで POST し、成功時の応答ボディを返します。
func (c *ElevenLabsClient) postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("ElevenLabs のAPIキーが未設定なのだ (ELEVENLABS_API_KEY を確認するのだ)")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗したのだ: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= ttsMaxRetries; attempt++ {
		body, retryable, err := c.doOnce(ctx, url, encoded)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == ttsMaxRetries {
			break
		}

		wait := ttsInitialBackoff<<attempt + time.Duration(rand.Int63n(int64(ttsJitterRange)))
		slog.Warn("音声エンドポイントが混んでいるのでリトライするのだ",
			"attempt", attempt+1, "max_retries", ttsMaxRetries, "wait", wait, "error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// doOnce は1回分のHTTP呼び出しを行い、リトライすべき失敗かどうかも返すのだ。
func (c *ElevenLabsClient) doOnce(ctx context.Context, url string, encoded []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, false, fmt.Errorf("リクエストの構築に失敗したのだ: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// ネットワーク起因は一時的な可能性が高いのでリトライ対象なのだ
		return nil, true, fmt.Errorf("音声エンドポイントへの接続に失敗したのだ: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("応答の読み取りに失敗したのだ: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("音声エンドポイントがエラーを返したのだ (status=%d): %s",
			resp.StatusCode, truncateForLog(string(body), 200))
	}
	return body, false, nil
}

func truncateForLog(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
