package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// alignmentFor は注釈付きテキストの文字ごとに0.1秒刻みの
// タイムスタンプを振ったダミーの整列データを作るのだ。
func alignmentFor(annotated string) domain.CharacterAlignment {
	runes := []rune(annotated)
	align := domain.CharacterAlignment{
		Characters: make([]string, len(runes)),
		StartTimes: make([]float64, len(runes)),
		EndTimes:   make([]float64, len(runes)),
	}
	for i, r := range runes {
		align.Characters[i] = string(r)
		align.StartTimes[i] = float64(i) * 0.1
		align.EndTimes[i] = float64(i)*0.1 + 0.1
	}
	return align
}

func TestSplitWords(t *testing.T) {
	t.Run("空白区切りの単語と位置が得られること", func(t *testing.T) {
		words := splitWords([]rune("Hello world. Are you ready?"))
		require.Len(t, words, 5)
		assert.Equal(t, "Hello", words[0].word)
		assert.Equal(t, 0, words[0].start)
		assert.Equal(t, 5, words[0].end)
		assert.Equal(t, "world.", words[1].word)
		assert.Equal(t, 6, words[1].start)
		assert.Equal(t, "ready?", words[4].word)
		assert.Equal(t, 21, words[4].start)
		assert.Equal(t, 27, words[4].end)
	})

	t.Run("連続した空白や改行をまたいでも正しく切れること", func(t *testing.T) {
		words := splitWords([]rune("  one \n two  "))
		require.Len(t, words, 2)
		assert.Equal(t, "one", words[0].word)
		assert.Equal(t, "two", words[1].word)
	})

	t.Run("空文字列では単語ゼロであること", func(t *testing.T) {
		assert.Empty(t, splitWords([]rune("")))
	})
}

func TestBuildWordTimings(t *testing.T) {
	clean := "Hello world. Are you ready?"
	annotated, offsets := AnnotateExpressive(clean)
	align := alignmentFor(annotated)

	t.Run("5単語のタイミングが原文の位置で返ること", func(t *testing.T) {
		timings, err := BuildWordTimings(clean, align, offsets)
		require.NoError(t, err)
		require.Len(t, timings, 5)

		words := []string{"Hello", "world.", "Are", "you", "ready?"}
		for i, w := range words {
			assert.Equal(t, w, timings[i].Word, "word %d", i)
		}

		// CharStart が狭義単調増加で、スパンが重ならないこと
		for i := 1; i < len(timings); i++ {
			assert.Greater(t, timings[i].CharStart, timings[i-1].CharStart)
			assert.GreaterOrEqual(t, timings[i].CharStart, timings[i-1].CharEnd)
		}
		for _, wt := range timings {
			assert.Less(t, wt.CharStart, wt.CharEnd)
			assert.LessOrEqual(t, wt.StartTime, wt.EndTime)
		}

		// "Hello" は [warmly] の9文字分だけ後ろへずれた位置の時刻になること
		assert.InDelta(t, 0.9, timings[0].StartTime, 1e-9)
		// "Are" は両マーカー分(21文字)ずれること
		assert.InDelta(t, 3.4, timings[2].StartTime, 1e-9)
	})

	t.Run("タイミングが系列全体で単調非減少であること", func(t *testing.T) {
		timings, err := BuildWordTimings(clean, align, offsets)
		require.NoError(t, err)
		for i := 1; i < len(timings); i++ {
			assert.GreaterOrEqual(t, timings[i].StartTime, timings[i-1].StartTime)
		}
	})

	t.Run("範囲外の写像が端にクランプされること", func(t *testing.T) {
		// 整列データを意図的に短くして末尾側をはみ出させるのだ
		short := domain.CharacterAlignment{
			Characters: align.Characters[:10],
			StartTimes: align.StartTimes[:10],
			EndTimes:   align.EndTimes[:10],
		}
		timings, err := BuildWordTimings(clean, short, offsets)
		require.NoError(t, err)
		for _, wt := range timings {
			assert.LessOrEqual(t, wt.StartTime, short.StartTimes[9])
			assert.LessOrEqual(t, wt.EndTime, short.EndTimes[9])
		}
	})

	t.Run("整列データが空ならエラーになること", func(t *testing.T) {
		_, err := BuildWordTimings(clean, domain.CharacterAlignment{}, offsets)
		assert.Error(t, err)
	})

	t.Run("整列データの配列長が不揃いならエラーになること", func(t *testing.T) {
		broken := domain.CharacterAlignment{
			Characters: []string{"a", "b"},
			StartTimes: []float64{0},
			EndTimes:   []float64{0.1, 0.2},
		}
		_, err := BuildWordTimings(clean, broken, offsets)
		assert.Error(t, err)
	})

	t.Run("マーカー無しのテキストでは恒等写像になること", func(t *testing.T) {
		timings, err := BuildWordTimings("abc def", alignmentFor("abc def"), nil)
		require.NoError(t, err)
		require.Len(t, timings, 2)
		assert.InDelta(t, 0.0, timings[0].StartTime, 1e-9)
		assert.InDelta(t, 0.4, timings[1].StartTime, 1e-9)
	})
}
