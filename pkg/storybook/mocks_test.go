package storybook

import (
	"context"
	"fmt"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
)

// mockTextGen は GenerateText の呼び出しを順番に記録し、
// あらかじめ積んだ応答を順に返すテスト用実装なのだ。
type mockTextGen struct {
	prompts   []string
	responses []string
	errs      []error

	visionPrompts []string
	visionResp    string
	visionErr     error
}

func (m *mockTextGen) GenerateText(_ context.Context, prompt string, _ gemini.TextOptions) (string, error) {
	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return fmt.Sprintf("canned response %d", idx), nil
}

func (m *mockTextGen) GenerateTextFromImage(_ context.Context, _ domain.InlineImage, prompt string, _ gemini.TextOptions) (string, error) {
	m.visionPrompts = append(m.visionPrompts, prompt)
	if m.visionErr != nil {
		return "", m.visionErr
	}
	return m.visionResp, nil
}

// mockImageGen は画像生成の呼び出しプロンプトとオプションを記録するのだ。
type mockImageGen struct {
	prompts []string
	seeds   []*int32
	errs    []error
	data    []byte
	mime    string
}

func (m *mockImageGen) GenerateImage(_ context.Context, prompt string, opts gemini.ImageOptions) (*domain.GeneratedImage, error) {
	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.seeds = append(m.seeds, opts.Seed)
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	data := m.data
	if data == nil {
		data = []byte{0x89, 0x50, byte(idx)}
	}
	mime := m.mime
	if mime == "" {
		mime = "image/png"
	}
	return &domain.GeneratedImage{Data: data, MIMEType: mime}, nil
}

// mockBlobStore はアップロード内容を記録して連番URLを返すのだ。
type mockBlobStore struct {
	puts  int
	mimes []string
	err   error
}

func (m *mockBlobStore) Put(_ context.Context, _ []byte, mimeType, folderHint string) (string, error) {
	m.puts++
	m.mimes = append(m.mimes, mimeType)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("https://blob.test/%s/img-%d.png", folderHint, m.puts), nil
}

// fastConfig はテストが待たされないよう間隔を潰した設定なのだ。
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.ImageInterval = 1
	return cfg
}
