package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/pkg/gemini"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は addAppFlags で各フラグに紐付けられる実行時オプションなのだ。
var opts config.Options

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.InputFile, "input-file", "f", "", "入力ファイルのパス（絵・本文テキスト）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.InputURL, "input-url", "u", "", "リモートの入力（絵やテキスト）を取得するためのURLなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Description, "description", "d", "", "子どもが絵について話した内容なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Language, "language", "l", string(config.DefaultLanguage), "物語の言語（english/spanish/french/chinese）なのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultLocalDir, "保存先ディレクトリ（ローカル or gs://...）なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", gemini.DefaultTextModel, "使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", gemini.DefaultImageModel, "使用する画像生成モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")

	// --- ナレーション固有設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.VoiceID, "voice", "", "ElevenLabsの音声IDなのだ（未指定なら既定の声）。")
	rootCmd.PersistentFlags().Float64Var(&opts.Speed, "speed", config.DefaultSpeed, "読み上げ速度（0.5〜2.0）なのだ。")
}

// preRunAppE は、コマンド実行前の共通チェックを行うのだ。
// APIキーの要否はコマンドごとに違うので、ここでは何も強制しないのだよ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	return nil
}

// ensureGeminiKey は Gemini API を使うコマンドの必須チェックなのだ。
func ensureGeminiKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ap-storybook-go",
		addAppFlags,
		preRunAppE,
		storyCmd,
		bookCmd,
		narrateCmd,
	)
}
