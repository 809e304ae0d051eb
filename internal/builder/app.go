package builder

import (
	"github.com/shouni/go-storybook-kit/internal/config"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-storybook-kit/pkg/gemini"
	"github.com/shouni/go-storybook-kit/pkg/storage"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config          // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、ストレージ設定など）。
	Options    config.Options          // Optionsは、コマンドラインから渡された実行時の設定です（言語、出力先、モデル名など）。
	Reader     remoteio.InputReader    // Readerは、絵や本文テキストの読み込みに使用する入力元です。
	Writer     remoteio.OutputWriter   // Writerは、生成された内容を保存するための出力先です。
	Store      storage.BlobStore       // Storeは、生成画像やナレーション音声を置くBLOBストレージです。
	HTTPClient httpkit.HTTPClient // HTTPClient は外部URLの取得に使う共通クライアント
	aiClient   *gemini.Client          // aiClient はGeminiの通信に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.HTTPClient,
	aiClient *gemini.Client,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	store storage.BlobStore,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Reader:     reader,
		Writer:     writer,
		Store:      store,
		HTTPClient: httpClient,
		aiClient:   aiClient,
	}
}
