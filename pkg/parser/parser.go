package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// Parser は保存済みの絵本ファイルを解析するためのインターフェースを定義します。
type Parser interface {
	ParseFromPath(ctx context.Context, fullPath string) (*domain.StoryResult, error)
}

// StoryFileParser は保存済みの絵本（JSON / Markdown）を読み戻す構造体です。
type StoryFileParser struct {
	reader remoteio.InputReader
}

// NewStoryFileParser は新しい StoryFileParser インスタンスを生成します。
func NewStoryFileParser(r remoteio.InputReader) *StoryFileParser {
	return &StoryFileParser{reader: r}
}

// ParseFromPath は指定された GCS URIやローカルファイルパスなどから
// コンテンツを読み込み、拡張子に応じて解析して domain.StoryResult を返します。
func (p *StoryFileParser) ParseFromPath(ctx context.Context, storyFile string) (*domain.StoryResult, error) {
	slog.InfoContext(ctx, "絵本ファイルを読み込んでいます", "path", storyFile)
	rc, err := p.reader.Open(ctx, storyFile)
	if err != nil {
		return nil, fmt.Errorf("絵本ファイルのオープンに失敗しました (%s): %w", storyFile, err)
	}
	defer rc.Close()

	switch strings.ToLower(path.Ext(storyFile)) {
	case ".json":
		story := &domain.StoryResult{}
		if err := json.NewDecoder(rc).Decode(story); err != nil {
			return nil, fmt.Errorf("絵本JSONのパースに失敗しました: %w", err)
		}
		return story, nil
	default:
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("絵本ファイルの読み込みに失敗しました: %w", err)
		}
		return NewMarkdownParser().Parse(string(data))
	}
}
