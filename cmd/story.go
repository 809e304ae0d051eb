package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// storyCmd は、子どもの絵と説明文から絵本を生成するメインコマンドなのだ！
var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "子どもの絵から、挿絵つきの絵本を生成するのだ！",
	Long: `描いた絵（画像ファイル）と子どもの説明文を読み込み、登場キャラクターを解析して
ページごとの物語と挿絵を持つ1冊の絵本を生成するのだ。絵が無くても説明文だけで作れるのだよ。`,
	Example: `  ap-storybook-go story -f drawing.png -d "a green dragon flying over my house" -l english
  ap-storybook-go story -d "un gato con botas" -l spanish -o output/cat`,
	RunE: storyCommand,
}

func init() {
	storyCmd.Flags().BoolVar(&opts.Narrate, "narrate", false, "絵本の本文からナレーション音声も生成するのだ。")
}

// storyCommand は、story サブコマンドの実行ロジック本体なのだ。
func storyCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if err := ensureGeminiKey(); err != nil {
		return err
	}

	// 絵も説明文も無いと物語の種が無いのだ
	if opts.InputFile == "" && opts.InputURL == "" && opts.Description == "" {
		return fmt.Errorf("絵（--input-file / --input-url）か説明文（--description）を指定してほしいのだ")
	}

	// 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	slog.Info("絵本生成パイプラインを起動するのだ！",
		"language", opts.Language,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output", opts.OutputDir)

	if err := pipeline.ExecuteStory(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
