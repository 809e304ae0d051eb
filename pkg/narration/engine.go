package narration

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// SynthesisResult は音声プロバイダの合成結果です。
// Alignment は送信したテキスト（マーカー注入済み）の文字に対応するのだ。
type SynthesisResult struct {
	Audio     []byte
	MIMEType  string
	Alignment domain.CharacterAlignment
}

// Synthesizer は文字タイムスタンプ付きの音声合成操作です。
type Synthesizer interface {
	SynthesizeWithTimestamps(ctx context.Context, text string, params VoiceParams) (*SynthesisResult, error)
}

// Engine は表現マーカーの注入、音声合成、単語タイミングの再構成を
// 一括して行うエンジンです。
type Engine struct {
	synth Synthesizer
}

// NewEngine はエンジンを組み立てます。プロバイダは注入なのだ。
func NewEngine(synth Synthesizer) *Engine {
	return &Engine{synth: synth}
}

// SynthesizeWithWordTimings は原文テキストから読み聞かせ音声と
// 単語単位のタイミング列を生成します。
// プロバイダ呼び出しの失敗だけがエラーで、呼び出し側は
// タイミング無しのローカル読み上げへフォールバックする想定なのだ。
func (e *Engine) SynthesizeWithWordTimings(ctx context.Context, cleanText string, params VoiceParams) (*domain.NarrationResult, error) {
	annotated, offsets := AnnotateExpressive(cleanText)
	slog.Debug("表現マーカーを注入したのだ", "markers", len(offsets), "clean_chars", len([]rune(cleanText)), "annotated_chars", len([]rune(annotated)))

	result, err := e.synth.SynthesizeWithTimestamps(ctx, annotated, params)
	if err != nil {
		return nil, fmt.Errorf("音声合成に失敗したのだ: %w", err)
	}

	timings, err := BuildWordTimings(cleanText, result.Alignment, offsets)
	if err != nil {
		return nil, fmt.Errorf("単語タイミングの再構成に失敗したのだ: %w", err)
	}

	mimeType := result.MIMEType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return &domain.NarrationResult{
		Audio:       result.Audio,
		AudioBase64: base64.StdEncoding.EncodeToString(result.Audio),
		MIMEType:    mimeType,
		WordTimings: timings,
	}, nil
}
