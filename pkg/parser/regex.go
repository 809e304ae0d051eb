package parser

import "regexp"

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// PageRegex は "## Page 3" / "## Scene 3" 形式のページ区切り行を特定します。
	PageRegex = regexp.MustCompile(`^##\s+(?:Page|Scene)\s+(\d+)`)

	// ImageRegex は "![alt](url)" 形式の画像リンクをキャプチャします。
	ImageRegex = regexp.MustCompile(`^!\[[^\]]*\]\(([^)]+)\)`)

	// QuoteRegex は "> あらすじ" 形式の引用行をキャプチャします。
	QuoteRegex = regexp.MustCompile(`^>\s*(.+)`)
)
