package parser

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// MarkdownParser は絵本のMarkdown出力を解析し、構造化データに戻す構造体です。
// ナレーション生成のように「保存済みの絵本からきれいな本文だけ欲しい」
// 場面で使うのだ。
type MarkdownParser struct {
}

// NewMarkdownParser は Parser を初期化するのだ。
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse は Markdown テキストを解析して domain.StoryResult 構造体に変換します。
// 見出しや画像リンクは取り除かれ、ページ本文だけが残るのだ。
func (p *MarkdownParser) Parse(input string) (*domain.StoryResult, error) {
	story := &domain.StoryResult{}
	lines := strings.Split(input, "\n")

	var current *strings.Builder
	var summaryLines []string
	inPage := false

	// 溜めたページ本文を確定して追加するヘルパー関数
	flushPage := func() {
		if current == nil {
			return
		}
		text := strings.TrimSpace(current.String())
		if text != "" {
			story.Pages = append(story.Pages, domain.Page{Text: text})
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := TitleRegex.FindStringSubmatch(trimmed); m != nil {
			story.Title = strings.TrimSpace(m[1])
			continue
		}

		if PageRegex.MatchString(trimmed) {
			flushPage()
			current = &strings.Builder{}
			inPage = true
			continue
		}

		// 画像リンクは本文ではないので読み飛ばすのだ
		if ImageRegex.MatchString(trimmed) {
			continue
		}

		if m := QuoteRegex.FindStringSubmatch(trimmed); m != nil {
			if !inPage {
				summaryLines = append(summaryLines, strings.TrimSpace(m[1]))
			}
			continue
		}

		if current != nil {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(trimmed)
		}
	}
	flushPage()

	if len(story.Pages) == 0 {
		return nil, fmt.Errorf("有効なページが見つかりませんでした")
	}

	story.Summary = strings.Join(summaryLines, " ")
	texts := make([]string, len(story.Pages))
	for i, page := range story.Pages {
		texts[i] = page.Text
	}
	story.FullText = strings.Join(texts, "\n\n")
	return story, nil
}
