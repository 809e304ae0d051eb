// Package storybook は「子供の絵から絵本を作る」パイプラインのオーケストレータです。
package storybook

import (
	"context"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
)

// TextGenerator はテキスト生成側のゲートウェイ操作です（テスト用の縫い目）。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts gemini.TextOptions) (string, error)
	GenerateTextFromImage(ctx context.Context, image domain.InlineImage, prompt string, opts gemini.TextOptions) (string, error)
}

// ImageGenerator は画像生成側のゲートウェイ操作です。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, opts gemini.ImageOptions) (*domain.GeneratedImage, error)
}
