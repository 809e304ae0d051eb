package prompts

import (
	"fmt"
	"strings"
)

// BuildSimplifyPrompt は長文テキストの1チャンクを児童向けに書き直させます。
func BuildSimplifyPrompt(rawChunk string) string {
	var b strings.Builder
	b.WriteString("Rewrite the following text for children aged 7-10 (Grade 2-4 reading level).\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use short sentences (12 words or fewer when possible). No jargon or complex vocabulary.\n")
	b.WriteString("- Preserve the core plot EXACTLY. Do NOT invent new events, characters, or story elements. Do NOT add moral lessons unless they were in the original.\n")
	b.WriteString("- Keep the same tone (adventure, mystery, humor, etc.) but make it age-appropriate.\n")
	b.WriteString("- If the text contains violence or mature themes, soften them (e.g. \"the villain was angry\" instead of graphic detail).\n")
	b.WriteString("- Output ONLY the simplified text. No explanations, headings, or meta-commentary.\n\n")
	b.WriteString("Original text:\n---\n")
	b.WriteString(rawChunk)
	b.WriteString("\n---")
	return b.String()
}

// BuildExtractCharactersPrompt は平易化済みテキストから登場人物の
// 外見サマリーをJSON配列で抽出させます。
func BuildExtractCharactersPrompt(simplifiedText string) string {
	var b strings.Builder
	b.WriteString("Read the following children's story text and extract a list of every named character.\n\n")
	b.WriteString("For each character, provide:\n")
	b.WriteString("- name: the character's name or role\n")
	b.WriteString("- appearance: 2-4 visual details (hair, clothing, colors, species, distinguishing features)\n\n")
	b.WriteString("Respond with ONLY a JSON array. No markdown.\n")
	b.WriteString(`Example: [{"name":"Luna the rabbit","appearance":"small white rabbit, blue coat, red boots, pink nose"}]`)
	b.WriteString("\n\nStory text:\n---\n")
	b.WriteString(simplifiedText)
	b.WriteString("\n---")
	return b.String()
}

// sceneIdentification は挿絵にすべき場面を特定させる共通ヘッダーなのだ。
const sceneIdentification = `You are an art director for a children's book. For the given story section, identify 2-4 key moments worth illustrating.

For each moment:
1. Write a short scene description (1-2 sentences) specific enough to send directly to an image generator.
2. Name every character in the scene and describe their appearance briefly so the image generator draws them consistently.
3. Include setting details (indoor/outdoor, time of day, weather).
4. Child-friendly, warm, simple imagery. No dark or violent content.

Respond with ONLY a JSON array of strings. No markdown.
Example: ["A small rabbit in a blue coat stands at the edge of a sunlit forest, looking curious.", "The rabbit and a friendly orange fox share red berries under a big oak tree at sunset."]`

// BuildSceneIdentificationPrompt は平易化済みセクションから場面リストを求めます。
func BuildSceneIdentificationPrompt(simplifiedSection string) string {
	return fmt.Sprintf("%s\n\nStory section:\n---\n%s\n---", sceneIdentification, simplifiedSection)
}

// BookIllustrationStyle は絵本化パイプライン用のスタイル句です。
const BookIllustrationStyle = "2D flat digital illustration, vibrant children's picture book style. " +
	"Bright saturated colors, bold primaries and warm pastels. " +
	"Clean outlines, flat color fills, soft rounded shapes. " +
	"Characters have large friendly eyes and expressive faces. " +
	"Rich storybook backgrounds, clear foreground/midground/background. " +
	"Magical warm atmosphere, high contrast, crisp and clean. " +
	"Ages 4-8 appropriate, no dark or complex imagery."

// BuildBookIllustrationPrompt は絵本化パイプラインの1場面分の画像プロンプトです。
func BuildBookIllustrationPrompt(sceneDescription, characterSummary string) string {
	parts := []string{BookIllustrationStyle}
	if characterSummary != "" {
		parts = append(parts, "Characters (keep consistent): "+characterSummary)
	}
	parts = append(parts, "Scene to illustrate: "+sceneDescription)
	return strings.Join(parts, "\n")
}
