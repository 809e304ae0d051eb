package narration

import (
	"fmt"
	"unicode"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// wordSpan は原文中の1単語の開始・終了位置（文字インデックス、終了は排他）です。
type wordSpan struct {
	word       string
	start, end int
}

// splitWords は空白区切りの単語とその文字位置を列挙するのだ。
func splitWords(runes []rune) []wordSpan {
	var words []wordSpan
	i := 0
	for i < len(runes) {
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			break
		}
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		words = append(words, wordSpan{word: string(runes[start:i]), start: start, end: i})
	}
	return words
}

// BuildWordTimings はプロバイダが返した注釈付きテキスト基準の文字タイムスタンプを、
// 原文基準の単語タイミングへ再構成します。
// 変換は offsets（マーカー挿入位置の表）を介した単調写像で、範囲外は端にクランプするのだ。
func BuildWordTimings(cleanText string, align domain.CharacterAlignment, offsets domain.AnnotationOffsetMap) ([]domain.WordTiming, error) {
	n := len(align.Characters)
	if n == 0 {
		return nil, fmt.Errorf("文字タイムスタンプが空なのだ")
	}
	if len(align.StartTimes) != n || len(align.EndTimes) != n {
		return nil, fmt.Errorf("文字タイムスタンプの配列長が揃っていないのだ (chars=%d start=%d end=%d)",
			n, len(align.StartTimes), len(align.EndTimes))
	}

	words := splitWords([]rune(cleanText))
	timings := make([]domain.WordTiming, 0, len(words))
	for _, w := range words {
		startIdx := clamp(offsets.AnnotatedIndex(w.start), 0, n-1)
		endIdx := clamp(offsets.AnnotatedIndex(w.end-1), 0, n-1)

		timings = append(timings, domain.WordTiming{
			Word:      w.word,
			CharStart: w.start,
			CharEnd:   w.end,
			StartTime: align.StartTimes[startIdx],
			EndTime:   align.EndTimes[endIdx],
		})
	}
	return timings, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
