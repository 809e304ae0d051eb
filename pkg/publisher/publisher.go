// Package publisher は生成された絵本をファイル群（Markdown + JSON + 音声）
// として書き出す役割を担います。書き込み先は remoteio 経由なので、
// ローカルディレクトリでも GCS でも同じコードで動くのだ。
package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-storybook-kit/pkg/asset"
	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult はパブリッシュ処理で生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath  string // 生成された storybook.md のパス
	JSONPath      string // 生成された storybook.json のパス
	NarrationPath string // 保存されたナレーション音声のパス（無ければ空）
}

// StorybookPublisher は成果物の永続化とフォーマット変換を担います。
type StorybookPublisher struct {
	writer remoteio.OutputWriter
}

// NewStorybookPublisher は指定された書き込み先を使うパブリッシャーを返します。
func NewStorybookPublisher(writer remoteio.OutputWriter) *StorybookPublisher {
	return &StorybookPublisher{writer: writer}
}

// PublishStory は絵本1冊分を Markdown と JSON で書き出すのだ。
func (p *StorybookPublisher) PublishStory(ctx context.Context, story *domain.StoryResult, narration *domain.NarrationResult, opts Options) (PublishResult, error) {
	result := PublishResult{}

	markdownPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultStoryName)
	if err != nil {
		return result, err
	}
	jsonPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultStoryJSON)
	if err != nil {
		return result, err
	}

	// data URL のままだと Markdown が巨大化するので、ファイルに逃がすのだ
	if err := p.saveInlineImages(ctx, story, opts); err != nil {
		return result, err
	}

	content := p.buildMarkdown(story)
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗したのだ: %w", err)
	}
	result.MarkdownPath = markdownPath

	encoded, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return result, fmt.Errorf("生成結果のエンコードに失敗したのだ: %w", err)
	}
	if err := p.writer.Write(ctx, jsonPath, bytes.NewReader(encoded), "application/json"); err != nil {
		return result, fmt.Errorf("JSONファイルの書き込みに失敗したのだ: %w", err)
	}
	result.JSONPath = jsonPath

	// ナレーションがあれば音声も並べて保存するのだ
	if narration != nil && len(narration.Audio) > 0 {
		audioPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultNarrationName)
		if err != nil {
			return result, err
		}
		if err := p.writer.Write(ctx, audioPath, bytes.NewReader(narration.Audio), narration.MIMEType); err != nil {
			return result, fmt.Errorf("ナレーション音声の書き込みに失敗したのだ: %w", err)
		}
		result.NarrationPath = audioPath
	}

	slog.Info("絵本を書き出したのだ", "markdown", result.MarkdownPath, "pages", len(story.Pages))
	return result, nil
}

// PublishBook は絵本化された本を Markdown で書き出すのだ。
func (p *StorybookPublisher) PublishBook(ctx context.Context, book *domain.BookResult, opts Options) (PublishResult, error) {
	result := PublishResult{}

	markdownPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultStoryName)
	if err != nil {
		return result, err
	}

	content := p.buildBookMarkdown(book)
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗したのだ: %w", err)
	}
	result.MarkdownPath = markdownPath
	return result, nil
}

// saveInlineImages は data URL 形式の挿絵をファイルとして保存し、
// ページの参照先を保存後のパスに差し替えます。通常のURLはそのまま残すのだ。
func (p *StorybookPublisher) saveInlineImages(ctx context.Context, story *domain.StoryResult, opts Options) error {
	imageDir, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultImageDir)
	if err != nil {
		return err
	}
	basePath, err := asset.ResolveOutputPath(imageDir, asset.DefaultPageFileName)
	if err != nil {
		return err
	}

	for i := range story.Pages {
		mimeType, data, ok := decodeDataURL(story.Pages[i].ImageURL)
		if !ok {
			continue
		}
		pagePath, err := asset.GenerateIndexedPath(basePath, i+1)
		if err != nil {
			return fmt.Errorf("挿絵パスの生成に失敗したのだ: %w", err)
		}
		if err := p.writer.Write(ctx, pagePath, bytes.NewReader(data), mimeType); err != nil {
			return fmt.Errorf("挿絵の書き込みに失敗したのだ (page=%d): %w", i+1, err)
		}
		story.Pages[i].ImageURL = pagePath
	}
	return nil
}

// decodeDataURL は data URL をデコードして MIME タイプと中身を返します。
// data URL でなければ ok=false を返すのだ。
func decodeDataURL(rawURL string) (mimeType string, data []byte, ok bool) {
	payload, found := strings.CutPrefix(rawURL, "data:")
	if !found {
		return "", nil, false
	}
	mimeType, encoded, found := strings.Cut(payload, ";base64,")
	if !found {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, false
	}
	return mimeType, data, true
}

// buildMarkdown は絵本の Markdown テキストを構築します。
func (p *StorybookPublisher) buildMarkdown(story *domain.StoryResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", story.Title)
	if story.Summary != "" {
		fmt.Fprintf(&sb, "> %s\n\n", story.Summary)
	}
	if story.Fallback {
		sb.WriteString("> ※ AI生成に失敗したため、代替ストーリーを表示しているのだ。\n\n")
	}

	for i, page := range story.Pages {
		fmt.Fprintf(&sb, "## Page %d\n\n", i+1)
		if page.ImageURL != "" {
			fmt.Fprintf(&sb, "![Page %d](%s)\n\n", i+1, page.ImageURL)
		}
		sb.WriteString(page.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// buildBookMarkdown は絵本化された本の Markdown テキストを構築します。
func (p *StorybookPublisher) buildBookMarkdown(book *domain.BookResult) string {
	var sb strings.Builder

	sb.WriteString("# Converted Storybook\n\n")
	if book.CharacterSummary != "" {
		fmt.Fprintf(&sb, "> Characters: %s\n\n", book.CharacterSummary)
	}

	for _, scene := range book.Scenes {
		fmt.Fprintf(&sb, "## Scene %d\n\n", scene.Index)
		if scene.ImageURL != "" {
			fmt.Fprintf(&sb, "![Scene %d](%s)\n\n", scene.Index, scene.ImageURL)
		}
		sb.WriteString(scene.Description)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(book.SimplifiedText)
	sb.WriteString("\n")
	return sb.String()
}
