package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotationOffsetMapAnnotatedIndex(t *testing.T) {
	// "[warmly] " (9文字) が位置0、"[curiously] " (12文字) が位置12に挿入された想定なのだ
	offsets := AnnotationOffsetMap{
		{CleanPos: 0, Cumulative: 9},
		{CleanPos: 12, Cumulative: 21},
	}

	t.Run("最初のマーカー以降の位置が正しくずれること", func(t *testing.T) {
		assert.Equal(t, 9, offsets.AnnotatedIndex(0))
		assert.Equal(t, 14, offsets.AnnotatedIndex(5))
	})

	t.Run("2番目のマーカー以降は累積オフセットが適用されること", func(t *testing.T) {
		assert.Equal(t, 33, offsets.AnnotatedIndex(12))
		assert.Equal(t, 41, offsets.AnnotatedIndex(20))
	})

	t.Run("マーカー境界の直前では前のオフセットが使われること", func(t *testing.T) {
		assert.Equal(t, 20, offsets.AnnotatedIndex(11))
	})

	t.Run("空のオフセット表では恒等変換になること", func(t *testing.T) {
		var empty AnnotationOffsetMap
		assert.Equal(t, 7, empty.AnnotatedIndex(7))
	})

	t.Run("最初のマーカーより前の位置はそのまま返ること", func(t *testing.T) {
		m := AnnotationOffsetMap{{CleanPos: 10, Cumulative: 8}}
		assert.Equal(t, 3, m.AnnotatedIndex(3))
	})
}
