package narration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMarker(t *testing.T) {
	t.Run("感嘆符と喜びの語で laughs happily になること", func(t *testing.T) {
		assert.Equal(t, "[laughs happily] ", chooseMarker("Hooray, we did it!", false))
		assert.Equal(t, "[laughs happily] ", chooseMarker("Wow, amazing!", false))
	})

	t.Run("感嘆符だけなら excited になること", func(t *testing.T) {
		assert.Equal(t, "[excited] ", chooseMarker("Look out!", false))
	})

	t.Run("疑問符で curiously になること", func(t *testing.T) {
		assert.Equal(t, "[curiously] ", chooseMarker("Are you ready?", false))
	})

	t.Run("ささやき系の語で softly になること", func(t *testing.T) {
		assert.Equal(t, "[softly] ", chooseMarker("She began to whisper.", false))
		assert.Equal(t, "[softly] ", chooseMarker("They tiptoed past the door.", false))
	})

	t.Run("恐怖系の語で nervously になること", func(t *testing.T) {
		assert.Equal(t, "[nervously] ", chooseMarker("The cave was dark.", false))
		assert.Equal(t, "[nervously] ", chooseMarker("He was scared.", false))
		assert.Equal(t, "[nervously] ", chooseMarker("She felt nervous.", false))
	})

	t.Run("悲しみ系の語で gently になること", func(t *testing.T) {
		assert.Equal(t, "[gently] ", chooseMarker("A tear rolled down.", false))
		assert.Equal(t, "[gently] ", chooseMarker("The lonely owl waited.", false))
	})

	t.Run("最初の文は何も当てはまらなければ warmly になること", func(t *testing.T) {
		assert.Equal(t, "[warmly] ", chooseMarker("Hello world.", true))
	})

	t.Run("2文目以降は該当なしなら無印になること", func(t *testing.T) {
		assert.Equal(t, "", chooseMarker("The cat sat down.", false))
	})

	t.Run("規則は先勝ちであること", func(t *testing.T) {
		// 感嘆符 + 恐怖語の組み合わせでは感嘆符が勝つのだ
		assert.Equal(t, "[excited] ", chooseMarker("The dark cave shook!", false))
	})
}

func TestSplitSentences(t *testing.T) {
	t.Run("終端記号ごとに区切られること", func(t *testing.T) {
		spans := splitSentences([]rune("One. Two! Three?"))
		require.Len(t, spans, 3)
		assert.Equal(t, 0, spans[0].start)
		assert.Equal(t, 4, spans[0].end)
		assert.Equal(t, 4, spans[1].start)
	})

	t.Run("連続した終端記号は同じ文に含まれること", func(t *testing.T) {
		spans := splitSentences([]rune("What?! Next."))
		require.Len(t, spans, 2)
		assert.Equal(t, 6, spans[0].end)
	})

	t.Run("終端記号の無い残りも1文になること", func(t *testing.T) {
		spans := splitSentences([]rune("Hello. trailing words"))
		require.Len(t, spans, 2)
		assert.Equal(t, 21, spans[1].end)
	})
}

func TestAnnotateExpressive(t *testing.T) {
	t.Run("Hello world. Are you ready? の注釈とオフセット表", func(t *testing.T) {
		annotated, offsets := AnnotateExpressive("Hello world. Are you ready?")

		assert.True(t, strings.HasPrefix(annotated, "[warmly] Hello world."))
		assert.Contains(t, annotated, "[curiously]")

		require.Len(t, offsets, 2)
		assert.Equal(t, 0, offsets[0].CleanPos)
		assert.Equal(t, 9, offsets[0].Cumulative)
		assert.Equal(t, 12, offsets[1].CleanPos)
		assert.Equal(t, 21, offsets[1].Cumulative)
	})

	t.Run("オフセット表のCleanPosが狭義単調増加であること", func(t *testing.T) {
		_, offsets := AnnotateExpressive("Wow, fantastic! The cave was dark. A tear fell. Can we go? Quiet now.")
		for i := 1; i < len(offsets); i++ {
			assert.Greater(t, offsets[i].CleanPos, offsets[i-1].CleanPos)
			assert.GreaterOrEqual(t, offsets[i].Cumulative, offsets[i-1].Cumulative)
		}
	})

	t.Run("注釈後の写像が常に元位置以上になること", func(t *testing.T) {
		clean := "Hello there. Are you okay? The end."
		annotated, offsets := AnnotateExpressive(clean)
		for pos := 0; pos < len([]rune(clean)); pos++ {
			mapped := offsets.AnnotatedIndex(pos)
			assert.GreaterOrEqual(t, mapped, pos)
			assert.Less(t, mapped, len([]rune(annotated)))
		}
	})

	t.Run("マーカーが無ければ原文のまま返ること", func(t *testing.T) {
		// 2文目以降、感情語なしの平叙文はマーカーが付かないのだ
		annotated, offsets := AnnotateExpressive("First line. Second line. Third line.")
		require.Len(t, offsets, 1) // 最初の文の warmly だけ
		assert.Equal(t, "[warmly] First line. Second line. Third line.", annotated)
	})

	t.Run("空文字列で空の結果が返ること", func(t *testing.T) {
		annotated, offsets := AnnotateExpressive("")
		assert.Empty(t, annotated)
		assert.Empty(t, offsets)
	})
}
