// Package narration は読み聞かせ音声の合成と、原文の単語単位での
// タイミング整列を担います。音声プロバイダには表現マーカーを注入した
// テキストを渡すが、クライアントに返す位置情報はマーカー無しの原文
// 基準でなければならない、というズレの吸収がこのパッケージの本体なのだ。
package narration

import (
	"regexp"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// 文ごとの感情判定に使うキーワード。語幹でのゆるい一致なのだ。
var (
	joyRegex  = regexp.MustCompile(`(?i)\b(hooray|yay|wow|amazing|wonderful|incredible|fantastic)\b`)
	softRegex = regexp.MustCompile(`(?i)\b(whisper|quiet|soft|hush|tiptoe|sneak)`)
	fearRegex = regexp.MustCompile(`(?i)\b(scar|dark|afraid|tremble|shiver|nervou)`)
	sadRegex  = regexp.MustCompile(`(?i)\b(sad|cry|tear|miss|lone)`)
)

// chooseMarker は1文に付ける表現マーカーを選びます。
// 規則は先勝ちで、最大1個しか付けないのだ。
func chooseMarker(sentence string, isFirst bool) string {
	hasExclamation := strings.ContainsRune(sentence, '!')
	switch {
	case hasExclamation && joyRegex.MatchString(sentence):
		return "[laughs happily] "
	case hasExclamation:
		return "[excited] "
	case strings.ContainsRune(sentence, '?'):
		return "[curiously] "
	case softRegex.MatchString(sentence):
		return "[softly] "
	case fearRegex.MatchString(sentence):
		return "[nervously] "
	case sadRegex.MatchString(sentence):
		return "[gently] "
	case isFirst:
		return "[warmly] "
	default:
		return ""
	}
}

// sentenceSpan は文1つ分の開始・終了位置（文字インデックス、終了は排他）です。
type sentenceSpan struct {
	start, end int
}

// splitSentences はテキストを「.!? までの並び」で文に区切ります。
// 終端記号の連続（"?!" など）は同じ文に含め、終端の無い残りも1文扱いなのだ。
func splitSentences(runes []rune) []sentenceSpan {
	var spans []sentenceSpan
	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && !isTerminator(runes[j]) {
			j++
		}
		for j < len(runes) && isTerminator(runes[j]) {
			j++
		}
		spans = append(spans, sentenceSpan{start: i, end: j})
		i = j
	}
	return spans
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// AnnotateExpressive はテキストへ表現マーカーを注入し、注入位置の
// オフセット表を返します。位置はすべて文字（rune）インデックスなのだ。
// 音声プロバイダの文字タイムスタンプが文字単位なので、バイトではなく
// 文字で数えないと多バイト文字でずれてしまう。
func AnnotateExpressive(cleanText string) (string, domain.AnnotationOffsetMap) {
	runes := []rune(cleanText)
	spans := splitSentences(runes)

	var annotated strings.Builder
	var offsets domain.AnnotationOffsetMap
	cumulative := 0

	for k, span := range spans {
		sentence := string(runes[span.start:span.end])
		if marker := chooseMarker(sentence, k == 0); marker != "" {
			cumulative += len([]rune(marker))
			offsets = append(offsets, domain.MarkerOffset{CleanPos: span.start, Cumulative: cumulative})
			annotated.WriteString(marker)
		}
		annotated.WriteString(sentence)
	}
	return annotated.String(), offsets
}
