package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// BuildCharacterDNA は解析済みの絵の情報から、全ページの画像プロンプトに
// 注入するキャラクター外見ブロックを構築します。
// 1回のストーリー生成中は必ず同じ文字列を使い回すこと。
// ページごとに組み直すと外見がぶれてしまうのだ。
func BuildCharacterDNA(desc domain.DrawingDescription) string {
	if len(desc.Characters) == 0 {
		return ""
	}

	lines := make([]string, 0, len(desc.Characters))
	for i, c := range desc.Characters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("character %d", i+1)
		}
		line := fmt.Sprintf("Character %d: %q", i+1, name)
		if g := strings.TrimSpace(c.Gender); g != "" && g != "unknown" {
			line += fmt.Sprintf(" (%s)", g)
		}
		if look := strings.TrimSpace(c.Appearance); look != "" {
			line += " — " + look
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, ". ") + "."
}
