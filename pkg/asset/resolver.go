// Package asset は成果物の出力パス解決を担う小さなヘルパー群です。
package asset

import (
	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir は生成された挿絵を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultStoryJSON は生成結果のデフォルト JSON ファイル名です。
	DefaultStoryJSON = "storybook.json"
	// DefaultStoryName は生成された絵本のデフォルト Markdown ファイル名です。
	DefaultStoryName = "storybook.md"
	// DefaultPageFileName はページ挿絵の共通のベースファイル名です。
	DefaultPageFileName = "page.png"
	// DefaultNarrationName はナレーション音声のデフォルトファイル名です。
	DefaultNarrationName = "narration.mp3"
	// DefaultTimingsName は単語タイミングのデフォルトファイル名です。
	DefaultTimingsName = "narration.json"
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/page.png", 1 -> "path/to/page_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}
