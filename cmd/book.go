package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// bookCmd は、長い本のテキストを子ども向けの絵本に変換するのだ。
var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "本のテキストを、子ども向けの挿絵つき絵本に変換するのだ！",
	Long: `本文テキストを読み込み、7〜10歳向けのやさしい文章に書き直した上で、
主要なシーンを選んで挿絵を生成するのだ。長い本はチャンクに分割して順番に処理するのだよ。`,
	Example: "  ap-storybook-go book -f alice.txt -o output/alice",
	RunE:    bookCommand,
}

func init() {
}

// bookCommand は、book サブコマンドの実行ロジック本体なのだ。
func bookCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if err := ensureGeminiKey(); err != nil {
		return err
	}

	// 入力ソースの必須チェック (opts は addAppFlags で紐付け済みと想定)
	if opts.InputFile == "" && opts.InputURL == "" {
		return fmt.Errorf("本のテキスト（--input-file または --input-url）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	slog.Info("本の絵本化パイプラインを起動するのだ！",
		"input", opts.InputFile,
		"text_model", cfg.GeminiModel,
		"output", opts.OutputDir)

	if err := pipeline.ExecuteBook(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("本の絵本化が完了したのだ！")
	return nil
}
