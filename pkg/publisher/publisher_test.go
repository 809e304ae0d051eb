package publisher

import (
	"context"
	"encoding/base64"
	"io"
	"path"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// pageFileRegex はページ挿絵 (page_1.png 等) の命名規約に一致するのだ。
var pageFileRegex = regexp.MustCompile(`^page_\d+\.png$`)

// mockOutputWriter は書き込み内容を記録するテスト用ライターなのだ。
type mockOutputWriter struct {
	writes map[string]string
	mimes  map[string]string
	err    error
}

func newMockOutputWriter() *mockOutputWriter {
	return &mockOutputWriter{
		writes: make(map[string]string),
		mimes:  make(map[string]string),
	}
}

func (m *mockOutputWriter) Write(_ context.Context, path string, r io.Reader, mime string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.writes[path] = string(data)
	m.mimes[path] = mime
	return nil
}

func sampleStory() *domain.StoryResult {
	return &domain.StoryResult{
		Title:   "The Brave Dragon",
		Summary: "A little dragon learns to fly.",
		Pages: []domain.Page{
			{Text: "Once upon a time, there was a green dragon.", ImageURL: "https://blob.test/stories/p1.png"},
			{Text: "The dragon flew high into the sky."},
		},
		FullText: "Once upon a time, there was a green dragon.\n\nThe dragon flew high into the sky.",
	}
}

func TestPublishStory(t *testing.T) {
	t.Run("MarkdownとJSONが書き出されること", func(t *testing.T) {
		writer := newMockOutputWriter()
		pub := NewStorybookPublisher(writer)

		result, err := pub.PublishStory(context.Background(), sampleStory(), nil, Options{OutputDir: "out"})
		require.NoError(t, err)

		md, ok := writer.writes[result.MarkdownPath]
		require.True(t, ok)
		assert.Contains(t, md, "# The Brave Dragon")
		assert.Contains(t, md, "> A little dragon learns to fly.")
		assert.Contains(t, md, "## Page 1")
		assert.Contains(t, md, "![Page 1](https://blob.test/stories/p1.png)")
		assert.Contains(t, md, "## Page 2")
		assert.NotContains(t, md, "![Page 2]", "画像が無いページにはリンクを出さないこと")
		assert.Equal(t, "text/markdown; charset=utf-8", writer.mimes[result.MarkdownPath])

		jsonBody, ok := writer.writes[result.JSONPath]
		require.True(t, ok)
		assert.Contains(t, jsonBody, `"The Brave Dragon"`)
		assert.Equal(t, "application/json", writer.mimes[result.JSONPath])

		assert.Empty(t, result.NarrationPath)
	})

	t.Run("ナレーション音声があれば保存されること", func(t *testing.T) {
		writer := newMockOutputWriter()
		pub := NewStorybookPublisher(writer)

		narration := &domain.NarrationResult{
			Audio:    []byte{0xFF, 0xF3},
			MIMEType: "audio/mpeg",
		}
		result, err := pub.PublishStory(context.Background(), sampleStory(), narration, Options{OutputDir: "out"})
		require.NoError(t, err)
		require.NotEmpty(t, result.NarrationPath)
		assert.Equal(t, "audio/mpeg", writer.mimes[result.NarrationPath])
	})

	t.Run("データURLの挿絵はファイルに書き出されること", func(t *testing.T) {
		writer := newMockOutputWriter()
		pub := NewStorybookPublisher(writer)

		story := sampleStory()
		payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
		story.Pages[1].ImageURL = "data:image/png;base64," + payload

		result, err := pub.PublishStory(context.Background(), story, nil, Options{OutputDir: "out"})
		require.NoError(t, err)

		// 差し替え後のパスは page_2.png 形式になること
		assert.Regexp(t, pageFileRegex, path.Base(story.Pages[1].ImageURL))
		assert.Equal(t, "fake-png-bytes", writer.writes[story.Pages[1].ImageURL])
		assert.Equal(t, "image/png", writer.mimes[story.Pages[1].ImageURL])
		assert.Contains(t, writer.writes[result.MarkdownPath], story.Pages[1].ImageURL)
	})

	t.Run("フォールバック時は注記が入ること", func(t *testing.T) {
		writer := newMockOutputWriter()
		pub := NewStorybookPublisher(writer)

		story := sampleStory()
		story.Fallback = true
		result, err := pub.PublishStory(context.Background(), story, nil, Options{OutputDir: "out"})
		require.NoError(t, err)
		assert.Contains(t, writer.writes[result.MarkdownPath], "代替ストーリー")
	})

	t.Run("書き込み失敗はエラーになること", func(t *testing.T) {
		writer := newMockOutputWriter()
		writer.err = assert.AnError
		pub := NewStorybookPublisher(writer)

		_, err := pub.PublishStory(context.Background(), sampleStory(), nil, Options{OutputDir: "out"})
		assert.Error(t, err)
	})
}

func TestPublishBook(t *testing.T) {
	t.Run("シーンごとに見出しと画像が並ぶこと", func(t *testing.T) {
		writer := newMockOutputWriter()
		pub := NewStorybookPublisher(writer)

		book := &domain.BookResult{
			SimplifiedText:   "A simple tale for children.",
			CharacterSummary: `"Alice" — a curious girl`,
			Scenes: []domain.Scene{
				{Index: 1, Description: "Alice falls down the rabbit hole.", ImageURL: "https://blob.test/books/s1.png"},
				{Index: 2, Description: "Alice meets the white rabbit."},
			},
		}
		result, err := pub.PublishBook(context.Background(), book, Options{OutputDir: "out"})
		require.NoError(t, err)

		md := writer.writes[result.MarkdownPath]
		assert.Contains(t, md, "## Scene 1")
		assert.Contains(t, md, "![Scene 1](https://blob.test/books/s1.png)")
		assert.Contains(t, md, "## Scene 2")
		assert.Contains(t, md, "A simple tale for children.")
		assert.Contains(t, md, `"Alice" — a curious girl`)
	})
}
