package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/shouni/go-storybook-kit/internal/builder"
	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/asset"
	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/parser"
	"github.com/shouni/go-storybook-kit/pkg/publisher"
	"github.com/shouni/go-storybook-kit/pkg/storybook"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// ExecuteStory は、子どもの絵（任意）と説明文から絵本を生成して保存するのだ。
func ExecuteStory(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	req := storybook.Request{
		Description: cfg.Options.Description,
		Language:    cfg.Options.NormalizedLanguage(),
	}

	// 絵が指定されていれば読み込んでリクエストに同梱するのだ
	if cfg.Options.InputFile != "" || cfg.Options.InputURL != "" {
		data, err := readInput(ctx, appCtx)
		if err != nil {
			return fmt.Errorf("絵の読み込みに失敗したのだ: %w", err)
		}
		req.Drawing = &domain.InlineImage{
			MIMEType: http.DetectContentType(data),
			Data:     data,
		}
	}

	slog.Info("Phase 1: 絵本の生成を開始するのだ...", "language", req.Language)
	gen := builder.BuildStoryGenerator(appCtx)
	story, err := gen.GenerateStory(ctx, req)
	if err != nil {
		return fmt.Errorf("絵本の生成に失敗したのだ: %w", err)
	}

	// --narrate 指定時はナレーションも作るのだ。失敗しても絵本は保存する。
	var narr *domain.NarrationResult
	if cfg.Options.Narrate {
		narr = runNarrationStep(ctx, appCtx, story.FullText)
	}

	// --- Publish Phase (保存) ---
	pub := builder.BuildPublisher(appCtx)
	result, err := pub.PublishStory(ctx, story, narr, publisherOptions(cfg))
	if err != nil {
		return fmt.Errorf("絵本の保存に失敗したのだ: %w", err)
	}

	slog.Info("絵本が完成したのだ！", "title", story.Title, "markdown", result.MarkdownPath, "fallback", story.Fallback)
	return nil
}

// ExecuteBook は、本のテキストを子ども向けの絵本に変換して保存するのだ。
func ExecuteBook(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	data, err := readInput(ctx, appCtx)
	if err != nil {
		return fmt.Errorf("本のテキストの読み込みに失敗したのだ: %w", err)
	}

	slog.Info("本の絵本化を開始するのだ...", "chars", len(data))
	conv := builder.BuildBookConverter(appCtx)
	book, err := conv.Convert(ctx, string(data))
	if err != nil {
		return fmt.Errorf("本の絵本化に失敗したのだ: %w", err)
	}

	pub := builder.BuildPublisher(appCtx)
	result, err := pub.PublishBook(ctx, book, publisherOptions(cfg))
	if err != nil {
		return fmt.Errorf("絵本の保存に失敗したのだ: %w", err)
	}

	slog.Info("絵本化が完了したのだ！", "scenes", len(book.Scenes), "markdown", result.MarkdownPath)
	return nil
}

// ExecuteNarrate は、テキストから感情豊かなナレーション音声と
// 単語タイミングを生成して保存するのだ。
func ExecuteNarrate(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	text, err := readNarrationText(ctx, appCtx)
	if err != nil {
		return err
	}

	engine, err := builder.BuildNarrationEngine(appCtx)
	if err != nil {
		return err
	}

	slog.Info("ナレーションの生成を開始するのだ...", "chars", len(text))
	narr, err := engine.SynthesizeWithWordTimings(ctx, text, builder.VoiceParams(appCtx))
	if err != nil {
		return fmt.Errorf("ナレーションの生成に失敗したのだ: %w", err)
	}

	audioPath, err := asset.ResolveOutputPath(cfg.Options.OutputDir, asset.DefaultNarrationName)
	if err != nil {
		return err
	}
	if err := appCtx.Writer.Write(ctx, audioPath, bytes.NewReader(narr.Audio), narr.MIMEType); err != nil {
		return fmt.Errorf("音声の保存に失敗したのだ: %w", err)
	}

	timingsPath, err := asset.ResolveOutputPath(cfg.Options.OutputDir, asset.DefaultTimingsName)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(narr.WordTimings, "", "  ")
	if err != nil {
		return fmt.Errorf("単語タイミングのエンコードに失敗したのだ: %w", err)
	}
	if err := appCtx.Writer.Write(ctx, timingsPath, bytes.NewReader(encoded), "application/json"); err != nil {
		return fmt.Errorf("単語タイミングの保存に失敗したのだ: %w", err)
	}

	slog.Info("ナレーションが完成したのだ！", "audio", audioPath, "words", len(narr.WordTimings))
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// ライフサイクル管理用の context と設定オブジェクトを受け取るのだ。
// 初期化中にエラーが発生した場合は、AppContext のポインタとエラーを返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpClient := httpkit.New(config.DefaultHTTPTimeout)
	aiClient := builder.InitializeAIClient(cfg)

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.InputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, err
	}

	// BLOBストアを一度だけ初期化
	store, err := builder.InitializeBlobStore(ctx, cfg, writer)
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, aiClient, reader, writer, store)
	return &appCtx, nil
}

// readInput は --input-url または --input-file の内容をバイト列で返すのだ。
func readInput(ctx context.Context, appCtx *builder.AppContext) ([]byte, error) {
	if appCtx.Options.InputURL != "" {
		return appCtx.HTTPClient.FetchBytes(ctx, appCtx.Options.InputURL)
	}
	if appCtx.Options.InputFile == "" {
		return nil, fmt.Errorf("入力ソース（--input-file または --input-url）を指定してほしいのだ")
	}

	rc, err := appCtx.Reader.Open(ctx, appCtx.Options.InputFile)
	if err != nil {
		return nil, fmt.Errorf("ファイル '%s' の読み込みに失敗しました: %w", appCtx.Options.InputFile, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// readNarrationText はナレーション対象のテキストを取得するのだ。
// 保存済みの絵本（.md / .json）は構造を解析して本文だけを取り出し、
// ファイル指定が無ければ --description をそのまま読み上げ対象にする。
func readNarrationText(ctx context.Context, appCtx *builder.AppContext) (string, error) {
	if appCtx.Options.InputFile == "" && appCtx.Options.InputURL == "" {
		text := strings.TrimSpace(appCtx.Options.Description)
		if text == "" {
			return "", fmt.Errorf("読み上げるテキスト（--input-file か --description）を指定してほしいのだ")
		}
		return text, nil
	}

	// 絵本ファイルなら見出しや画像リンクを除いた本文だけを読み上げるのだ
	if file := appCtx.Options.InputFile; file != "" {
		switch strings.ToLower(path.Ext(file)) {
		case ".md", ".json":
			story, err := parser.NewStoryFileParser(appCtx.Reader).ParseFromPath(ctx, file)
			if err != nil {
				return "", err
			}
			return story.FullText, nil
		}
	}

	data, err := readInput(ctx, appCtx)
	if err != nil {
		return "", fmt.Errorf("テキストの読み込みに失敗したのだ: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("読み上げるテキストが空なのだ")
	}
	return text, nil
}

// runNarrationStep は本文全体のナレーションを生成するのだ。失敗は警告に留める。
func runNarrationStep(ctx context.Context, appCtx *builder.AppContext, fullText string) *domain.NarrationResult {
	engine, err := builder.BuildNarrationEngine(appCtx)
	if err != nil {
		slog.Warn("ナレーションエンジンの初期化に失敗しました。音声なしで続行するのだ", "error", err)
		return nil
	}

	narr, err := engine.SynthesizeWithWordTimings(ctx, fullText, builder.VoiceParams(appCtx))
	if err != nil {
		slog.Warn("ナレーションの生成に失敗しました。音声なしで続行するのだ", "error", err)
		return nil
	}
	return narr
}

// publisherOptions は CLI オプションからパブリッシャー設定を組み立てるのだ。
func publisherOptions(cfg *config.Config) publisher.Options {
	return publisher.Options{OutputDir: cfg.Options.OutputDir}
}
