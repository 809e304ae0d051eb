package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

func TestGenerateText(t *testing.T) {
	t.Run("フェンス付きの応答が剥がされて返ること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			contentResponses: []*genai.GenerateContentResponse{
				textResponse("```json\n[\"Once upon a time.\"]\n```"),
			},
		}
		client, _ := newTestClient(mock)

		text, err := client.GenerateText(context.Background(), "prompt", TextOptions{})
		require.NoError(t, err)
		assert.Equal(t, `["Once upon a time."]`, text)
	})

	t.Run("モデル指定が既定値を上書きすること", func(t *testing.T) {
		mock := &mockGenerativeAPI{}
		client, _ := newTestClient(mock)

		_, err := client.GenerateText(context.Background(), "prompt", TextOptions{Model: "gemini-custom"})
		require.NoError(t, err)
		assert.Equal(t, "gemini-custom", mock.lastModel)
	})

	t.Run("空の応答はエラーになること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			contentResponses: []*genai.GenerateContentResponse{textResponse("  \n")},
		}
		client, _ := newTestClient(mock)

		_, err := client.GenerateText(context.Background(), "prompt", TextOptions{})
		assert.Error(t, err)
	})
}

func TestGenerateTextFromImage(t *testing.T) {
	t.Run("画像パートとテキストパートが同梱されること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			contentResponses: []*genai.GenerateContentResponse{textResponse(`{"setting": "a park"}`)},
		}
		client, _ := newTestClient(mock)

		img := domain.InlineImage{MIMEType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}
		_, err := client.GenerateTextFromImage(context.Background(), img, "describe this drawing", TextOptions{})
		require.NoError(t, err)

		require.Len(t, mock.lastContents, 1)
		parts := mock.lastContents[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, "describe this drawing", parts[0].Text)
		require.NotNil(t, parts[1].InlineData)
		assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	})

	t.Run("空の画像データは即エラーになること", func(t *testing.T) {
		client, _ := newTestClient(&mockGenerativeAPI{})
		_, err := client.GenerateTextFromImage(context.Background(), domain.InlineImage{}, "prompt", TextOptions{})
		assert.Error(t, err)
	})
}

func TestGenerateImage(t *testing.T) {
	t.Run("生成された画像バイト列が返ること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			imageResponses: []*genai.GenerateImagesResponse{
				imageResponse([]byte{0xff, 0xd8}, "image/jpeg"),
			},
		}
		client, _ := newTestClient(mock)

		img, err := client.GenerateImage(context.Background(), "a purple cat in a park", ImageOptions{})
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
		assert.Equal(t, "image/jpeg", img.MIMEType)
		assert.Equal(t, DefaultImageModel, mock.lastModel)
	})

	t.Run("画像が1枚も返らない場合はエラーになること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			imageResponses: []*genai.GenerateImagesResponse{{}},
		}
		client, _ := newTestClient(mock)

		_, err := client.GenerateImage(context.Background(), "prompt", ImageOptions{})
		assert.Error(t, err)
	})

	t.Run("MIMEタイプ欠落時はPNGで補完されること", func(t *testing.T) {
		mock := &mockGenerativeAPI{
			imageResponses: []*genai.GenerateImagesResponse{
				imageResponse([]byte{0x01}, ""),
			},
		}
		client, _ := newTestClient(mock)

		img, err := client.GenerateImage(context.Background(), "prompt", ImageOptions{})
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})
}

func TestClientLazyInit(t *testing.T) {
	t.Run("APIキー未設定のままリクエストするとエラーになること", func(t *testing.T) {
		client := NewClient("")
		_, err := client.GenerateText(context.Background(), "prompt", TextOptions{})
		assert.Error(t, err)
	})

	t.Run("NewClient自体はAPIキー無しでも失敗しないこと", func(t *testing.T) {
		assert.NotNil(t, NewClient(""))
	})
}
