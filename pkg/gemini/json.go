package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedResponse はモデル応答から有効な JSON を取り出せなかったことを示す
// 番兵エラーです。呼び出し側は errors.Is でフォールバック処理に分岐できるのだ。
var ErrMalformedResponse = errors.New("モデル応答のJSONが不正なのだ")

// jsonBlockRegex は ```json ... ``` 形式のコードブロックの中身を抽出します。
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// StripCodeFences は応答テキストから Markdown のコードフェンスを剥がします。
// フェンスが無ければそのまま返すのだ。
func StripCodeFences(text string) string {
	if match := jsonBlockRegex.FindStringSubmatch(text); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(text)
}

// extractJSONPayload はテキスト中から JSON として最も有望な部分文字列を切り出すのだ。
// 1. コードフェンスの中身
// 2. 最初の '{' から最後の '}' まで（または '[' と ']'）
// の順で探します。
func extractJSONPayload(text string) string {
	cleaned := StripCodeFences(text)
	if json.Valid([]byte(cleaned)) {
		return cleaned
	}

	// モデルが前置きや後書きを付けてくることがあるので、最外殻だけ切り出すのだ
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(cleaned, pair[0])
		end := strings.LastIndex(cleaned, pair[1])
		if start != -1 && end > start {
			candidate := cleaned[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}
	return cleaned
}

// DecodeJSON はモデル応答テキストを型 T としてデコードします。
// 失敗した場合は ErrMalformedResponse をラップしたエラーを返すのだ。
func DecodeJSON[T any](raw string) (T, error) {
	var result T
	payload := extractJSONPayload(raw)
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return result, fmt.Errorf("%w: %v (excerpt: %s)", ErrMalformedResponse, err, truncateString(raw, 120))
	}
	return result, nil
}

// truncateString はログやエラーメッセージ向けに文字列を丸めるヘルパーなのだ。
func truncateString(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
