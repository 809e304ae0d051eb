package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/bookconv"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
	"github.com/shouni/go-storybook-kit/pkg/narration"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/storage"
	"github.com/shouni/go-storybook-kit/pkg/storybook"
)

// InitializeAIClient は gemini クライアントを初期化します。
// 接続は最初の生成リクエスト時に張られるので、ここではエラーは起きないのだ。
func InitializeAIClient(cfg *config.Config) *gemini.Client {
	return gemini.NewClient(
		cfg.GeminiAPIKey,
		gemini.WithTextModel(cfg.GeminiModel),
		gemini.WithImageModel(cfg.GeminiImageModel),
	)
}

// InitializeBlobStore は生成画像の保存先を初期化します。
// MinIO の設定があればそちらを優先し、無ければ出力先ディレクトリへ直接書き込むのだ。
func InitializeBlobStore(ctx context.Context, cfg *config.Config, writer remoteio.OutputWriter) (storage.BlobStore, error) {
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			BucketName:      cfg.MinioBucket,
		})
		if err != nil {
			return nil, fmt.Errorf("MinIOストアの初期化に失敗したのだ: %w", err)
		}
		return store, nil
	}
	return storage.NewWriterStore(writer, cfg.Options.OutputDir), nil
}

// BuildStoryGenerator は絵から絵本を生成する Generator を構築します。
func BuildStoryGenerator(appCtx *AppContext) *storybook.Generator {
	cfg := storybook.DefaultConfig()
	cfg.AspectRatio = config.DefaultAspectRatio
	cfg.ImageInterval = config.DefaultImageInterval
	return storybook.NewGenerator(appCtx.aiClient, appCtx.aiClient, appCtx.Store, cfg)
}

// BuildBookConverter は本のテキストを絵本化する Converter を構築します。
func BuildBookConverter(appCtx *AppContext) *bookconv.Converter {
	cfg := bookconv.DefaultConfig()
	cfg.AspectRatio = config.DefaultAspectRatio
	cfg.ImageInterval = config.DefaultImageInterval
	return bookconv.NewConverter(appCtx.aiClient, appCtx.aiClient, appCtx.Store, cfg)
}

// BuildNarrationEngine はナレーション生成エンジンを構築します。
func BuildNarrationEngine(appCtx *AppContext) (*narration.Engine, error) {
	if appCtx.Config.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("環境変数 ELEVENLABS_API_KEY が設定されていないのだ。ナレーション生成には必須なのだ")
	}
	synth := narration.NewElevenLabsClient(appCtx.Config.ElevenLabsAPIKey)
	return narration.NewEngine(synth), nil
}

// BuildPublisher は成果物の保存を担当するパブリッシャーを構築します。
func BuildPublisher(appCtx *AppContext) *publisher.StorybookPublisher {
	if appCtx.Writer == nil {
		slog.Warn("OutputWriterが未設定です。保存機能が制限される可能性があります")
	}
	return publisher.NewStorybookPublisher(appCtx.Writer)
}

// VoiceParams はナレーション用の音声設定をオプションから組み立てるのだ。
func VoiceParams(appCtx *AppContext) narration.VoiceParams {
	voiceID := appCtx.Options.VoiceID
	if voiceID == "" {
		voiceID = appCtx.Config.ElevenLabsVoiceID
	}
	return narration.VoiceParams{
		VoiceID: voiceID,
		ModelID: appCtx.Config.ElevenLabsModelID,
		Speed:   appCtx.Options.Speed,
	}
}
