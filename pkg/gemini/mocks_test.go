package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// mockGenerativeAPI は generativeAPI のテスト用実装です。
// 呼び出しごとに responses / errs を順に消費するのだ。
type mockGenerativeAPI struct {
	contentCalls int
	imageCalls   int

	lastModel    string
	lastPrompt   string
	lastContents []*genai.Content

	contentResponses []*genai.GenerateContentResponse
	contentErrs      []error

	imageResponses []*genai.GenerateImagesResponse
	imageErrs      []error
}

func (m *mockGenerativeAPI) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	idx := m.contentCalls
	m.contentCalls++
	m.lastModel = model
	m.lastContents = contents

	var err error
	if idx < len(m.contentErrs) {
		err = m.contentErrs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(m.contentResponses) {
		return m.contentResponses[idx], nil
	}
	// 既定は最後の応答を繰り返すのだ
	if len(m.contentResponses) > 0 {
		return m.contentResponses[len(m.contentResponses)-1], nil
	}
	return textResponse("ok"), nil
}

func (m *mockGenerativeAPI) GenerateImages(_ context.Context, model string, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	idx := m.imageCalls
	m.imageCalls++
	m.lastModel = model
	m.lastPrompt = prompt

	var err error
	if idx < len(m.imageErrs) {
		err = m.imageErrs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(m.imageResponses) {
		return m.imageResponses[idx], nil
	}
	if len(m.imageResponses) > 0 {
		return m.imageResponses[len(m.imageResponses)-1], nil
	}
	return imageResponse([]byte{0x89, 0x50}, "image/png"), nil
}

// textResponse はテキスト1件だけを含む応答を組み立てるヘルパーなのだ。
func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func imageResponse(data []byte, mimeType string) *genai.GenerateImagesResponse {
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{
			{Image: &genai.Image{ImageBytes: data, MIMEType: mimeType}},
		},
	}
}

// sleepRecorder は実際には眠らず、要求された待機時間を記録するのだ。
type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

// newTestClient はモックを差し込み、待機を記録だけする Client を返すのだ。
func newTestClient(mock *mockGenerativeAPI) (*Client, *sleepRecorder) {
	rec := &sleepRecorder{}
	c := NewClient("test-key")
	c.models = mock
	c.sleep = rec.sleep
	return c, rec
}
