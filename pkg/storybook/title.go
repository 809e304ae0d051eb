package storybook

import (
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// TitleConfig はAIが返したタイトルの妥当性判定に使うしきい値です。
// どれも経験的な調整値なので、設定として外に出してあるのだ。
type TitleConfig struct {
	MaxChars     int // これより長いタイトルは文章の混入とみなす
	MaxWords     int // これより語数が多いタイトルも同様
	PrefixLen    int // 1ページ目の冒頭がこの長さで一致したら「言い直し」とみなす
	SummaryLimit int // 要約フォールバックの文字数上限
}

// DefaultTitleConfig は既定のしきい値を返します。
func DefaultTitleConfig() TitleConfig {
	return TitleConfig{
		MaxChars:     60,
		MaxWords:     8,
		PrefixLen:    40,
		SummaryLimit: 120,
	}
}

// Plausible はタイトルとして通用する文字列かどうかを判定します。
// モデルは時々、タイトルの代わりに物語の冒頭文をそのまま返してくるのだ。
func (c TitleConfig) Plausible(title, firstPage string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	if len([]rune(title)) > c.MaxChars {
		return false
	}
	if len(strings.Fields(title)) > c.MaxWords {
		return false
	}

	// 1ページ目の冒頭をそのまま言い直しているだけなら却下するのだ。
	// 比較は冒頭 PrefixLen 文字の範囲で行い、偶然一致しがちな短いタイトルは対象外とする
	nt := normalizeForCompare(title)
	nf := normalizeForCompare(firstPage)
	if ntr := []rune(nt); len(ntr) >= 15 {
		if len(ntr) > c.PrefixLen {
			nt = string(ntr[:c.PrefixLen])
		}
		if strings.HasPrefix(nf, nt) {
			return false
		}
	}
	return true
}

func normalizeForCompare(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GenericTitle はタイトル生成に失敗した場合の汎用タイトルを返すのだ。
func GenericTitle(lang domain.Language) string {
	switch lang.Normalize() {
	case domain.LanguageSpanish:
		return "Mi historia mágica"
	case domain.LanguageFrench:
		return "Mon histoire magique"
	case domain.LanguageChinese:
		return "我的魔法故事"
	default:
		return "My Magical Story"
	}
}
