// Package gemini は Google genai SDK への薄いゲートウェイを提供します。
// リトライ・バックオフ・JSON抽出など、呼び出し側が毎回書きたくない
// 定型処理をここに集約するのだ。
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// 既定のモデル名。呼び出し側が Options で上書きできます。
const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

// generativeAPI は genai.Client の Models サービスのうち、
// 本キットが利用する操作だけを切り出したインターフェースなのだ（テスト用の縫い目）。
type generativeAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client は Gemini / Imagen 系モデルへのゲートウェイです。
// SDK クライアントは最初の呼び出し時に遅延初期化されます。
type Client struct {
	apiKey     string
	textModel  string
	imageModel string

	mu     sync.Mutex
	models generativeAPI

	// sleep はバックオフ待機の実装。テストで差し替えるためのフックなのだ。
	sleep func(ctx context.Context, d time.Duration) error
}

// Option は Client の生成時設定です。
type Option func(*Client)

// WithTextModel は既定のテキスト生成モデルを上書きします。
func WithTextModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.textModel = model
		}
	}
}

// WithImageModel は既定の画像生成モデルを上書きします。
func WithImageModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.imageModel = model
		}
	}
}

// NewClient はゲートウェイを生成します。APIキーの検証と SDK 接続は
// 最初のリクエストまで遅延されるため、ここではエラーを返しません。
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureModels は SDK クライアントを必要になった時点で1度だけ構築するのだ。
func (c *Client) ensureModels(ctx context.Context) (generativeAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.models != nil {
		return c.models, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("APIキーが未設定なのだ (GEMINI_API_KEY を確認するのだ)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗したのだ: %w", err)
	}
	c.models = client.Models
	return c.models, nil
}

// TextOptions はテキスト生成1回分の調整項目です。
type TextOptions struct {
	Model           string
	Temperature     *float32
	MaxOutputTokens int32
}

// ImageOptions は画像生成1回分の調整項目です。
type ImageOptions struct {
	Model       string
	AspectRatio string
	Seed        *int32 // 同じシードなら画風がブレにくくなるのだ（省略可）
}

// 子供向けコンテンツなので、安全フィルタは中程度以上のブロックを既定とするのだ。
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	}
}

func (c *Client) textConfig(opts TextOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if opts.Temperature != nil {
		cfg.Temperature = opts.Temperature
	} else {
		cfg.Temperature = genai.Ptr[float32](0.8)
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	} else {
		cfg.MaxOutputTokens = 4096
	}
	return cfg
}

func (c *Client) resolveTextModel(opts TextOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return c.textModel
}

// GenerateText はプロンプトからテキストを生成します。
// 返り値はコードフェンスを剥がした状態のテキストなのだ。
func (c *Client) GenerateText(ctx context.Context, prompt string, opts TextOptions) (string, error) {
	models, err := c.ensureModels(ctx)
	if err != nil {
		return "", err
	}

	model := c.resolveTextModel(opts)
	var resp *genai.GenerateContentResponse
	err = c.withRetry(ctx, "generate_text", func() error {
		var callErr error
		resp, callErr = models.GenerateContent(ctx, model, genai.Text(prompt), c.textConfig(opts))
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("テキスト生成に失敗したのだ (model=%s): %w", model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("モデルが空の応答を返したのだ (model=%s)", model)
	}
	return StripCodeFences(text), nil
}

// GenerateTextFromImage は画像（子供の絵など）とプロンプトを同梱して
// テキストを生成します。画像解析系のリクエスト用なのだ。
func (c *Client) GenerateTextFromImage(ctx context.Context, image domain.InlineImage, prompt string, opts TextOptions) (string, error) {
	models, err := c.ensureModels(ctx)
	if err != nil {
		return "", err
	}
	if len(image.Data) == 0 {
		return "", fmt.Errorf("画像データが空なのだ")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: image.MIMEType, Data: image.Data}},
		},
	}}

	model := c.resolveTextModel(opts)
	var resp *genai.GenerateContentResponse
	err = c.withRetry(ctx, "generate_text_from_image", func() error {
		var callErr error
		resp, callErr = models.GenerateContent(ctx, model, contents, c.textConfig(opts))
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("画像付きテキスト生成に失敗したのだ (model=%s): %w", model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("モデルが空の応答を返したのだ (model=%s)", model)
	}
	return StripCodeFences(text), nil
}

// GenerateImage はプロンプトから挿絵を1枚生成します。
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ImageOptions) (*domain.GeneratedImage, error) {
	models, err := c.ensureModels(ctx)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = c.imageModel
	}
	aspectRatio := opts.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "4:3"
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
		// 子供が描いた人物も絵本に登場させたいので、人物生成は許可するのだ
		PersonGeneration: genai.PersonGenerationAllowAll,
		Seed:             opts.Seed,
	}

	var resp *genai.GenerateImagesResponse
	err = c.withRetry(ctx, "generate_image", func() error {
		var callErr error
		resp, callErr = models.GenerateImages(ctx, model, prompt, config)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗したのだ (model=%s): %w", model, err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("画像モデルが1枚も画像を返さなかったのだ (model=%s)", model)
	}

	img := resp.GeneratedImages[0].Image
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	slog.Debug("画像を生成したのだ", "model", model, "bytes", len(img.ImageBytes), "mime_type", mimeType)

	return &domain.GeneratedImage{Data: img.ImageBytes, MIMEType: mimeType}, nil
}
