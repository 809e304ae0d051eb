package narration

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSynthesizer は送られてきたテキストを記録し、そのテキストに
// 機械的なタイムスタンプを振って返すのだ。
type mockSynthesizer struct {
	received string
	audio    []byte
	err      error
}

func (m *mockSynthesizer) SynthesizeWithTimestamps(_ context.Context, text string, _ VoiceParams) (*SynthesisResult, error) {
	m.received = text
	if m.err != nil {
		return nil, m.err
	}
	audio := m.audio
	if audio == nil {
		audio = []byte("mp3data")
	}
	return &SynthesisResult{
		Audio:     audio,
		MIMEType:  "audio/mpeg",
		Alignment: alignmentFor(text),
	}, nil
}

func TestEngineSynthesizeWithWordTimings(t *testing.T) {
	t.Run("注釈込みで合成され原文基準のタイミングが返ること", func(t *testing.T) {
		synth := &mockSynthesizer{}
		engine := NewEngine(synth)

		result, err := engine.SynthesizeWithWordTimings(context.Background(), "Hello world. Are you ready?", VoiceParams{})
		require.NoError(t, err)

		// プロバイダにはマーカー入りのテキストが送られること
		assert.Contains(t, synth.received, "[warmly]")
		assert.Contains(t, synth.received, "[curiously]")

		// タイミングは原文基準で5単語であること
		require.Len(t, result.WordTimings, 5)
		assert.Equal(t, "Hello", result.WordTimings[0].Word)
		assert.Equal(t, 0, result.WordTimings[0].CharStart)
		assert.Equal(t, "ready?", result.WordTimings[4].Word)
		assert.Equal(t, 21, result.WordTimings[4].CharStart)

		assert.Equal(t, []byte("mp3data"), result.Audio)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3data")), result.AudioBase64)
		assert.Equal(t, "audio/mpeg", result.MIMEType)
	})

	t.Run("プロバイダの失敗がエラーとして返ること", func(t *testing.T) {
		engine := NewEngine(&mockSynthesizer{err: assert.AnError})
		_, err := engine.SynthesizeWithWordTimings(context.Background(), "Hello.", VoiceParams{})
		assert.Error(t, err)
	})
}

func TestClampSpeed(t *testing.T) {
	assert.Equal(t, 1.0, clampSpeed(0))
	assert.Equal(t, 0.5, clampSpeed(0.1))
	assert.Equal(t, 2.0, clampSpeed(5))
	assert.Equal(t, 1.2, clampSpeed(1.2))
}
