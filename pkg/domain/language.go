package domain

// Language は絵本本文の生成言語です。
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageSpanish Language = "spanish"
	LanguageFrench  Language = "french"
	LanguageChinese Language = "chinese"
)

// DefaultLanguage は言語指定が無い場合の既定値なのだ。
const DefaultLanguage = LanguageEnglish

// Normalize は未知の言語指定を既定値に丸めて返すのだ。
func (l Language) Normalize() Language {
	switch l {
	case LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageChinese:
		return l
	default:
		return DefaultLanguage
	}
}

// DisplayName はプロンプトに埋め込む英語表記の言語名を返します。
func (l Language) DisplayName() string {
	switch l.Normalize() {
	case LanguageSpanish:
		return "Spanish"
	case LanguageFrench:
		return "French"
	case LanguageChinese:
		return "Chinese"
	default:
		return "English"
	}
}
