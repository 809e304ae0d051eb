package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-storybook-kit/internal/config"
	"github.com/shouni/go-storybook-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// narrateCmd は、テキストから感情豊かなナレーション音声を生成するのだ。
var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "テキストから、単語タイミング付きのナレーション音声を生成するのだ！",
	Long: `絵本の本文などのテキストを読み込み、文ごとの雰囲気に合わせた感情タグを付けて
音声合成するのだ。読み上げに合わせて単語をハイライトできるタイミング情報も一緒に出力するのだよ。`,
	Example: `  ap-storybook-go narrate -f output/storybook.md -o output
  ap-storybook-go narrate -d "Once upon a time..." --speed 0.9`,
	RunE: narrateCommand,
}

func init() {
}

// narrateCommand は、narrate サブコマンドの実行ロジック本体なのだ。
func narrateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 音声合成はElevenLabsを使うので、キーの存在チェックは欠かせないのだ！
	if os.Getenv("ELEVENLABS_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 ELEVENLABS_API_KEY が設定されていません。音声合成には必須なのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("ナレーション生成を起動するのだ！",
		"voice", cfg.ElevenLabsVoiceID,
		"speed", opts.Speed,
		"output", opts.OutputDir)

	if err := pipeline.ExecuteNarrate(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("ナレーションの生成が完了したのだ！")
	return nil
}
