// Package prompts は AI ゲートウェイに送るプロンプトを組み立てる純粋関数群です。
// プロンプト文面はすべてここに集約し、オーケストレータ側には埋め込まないのだ。
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shouni/go-storybook-kit/pkg/domain"
)

// DrawingParse は子供の絵を構造化JSONとして記述させるビジョンプロンプトです。
const DrawingParse = `You are analyzing a child's drawing. Describe what you see in a structured way so a story and matching illustrations can be generated.

Respond with ONLY valid JSON in this exact shape (no markdown, no extra text):
{
  "characters": [
    {
      "name": "short name or role (e.g. 'the blue cat', 'a small girl')",
      "appearance": "2-3 visual details: colors, clothing, features (e.g. 'blue fur, big green eyes, red scarf')",
      "gender": "one of: male, female, unknown"
    }
  ],
  "setting": "one short sentence describing where the scene takes place",
  "objects": ["notable object 1", "notable object 2"],
  "mood": "one word or short phrase (e.g. happy, adventurous, cozy)",
  "colors": ["dominant color 1", "dominant color 2", "dominant color 3"],
  "artStyle": "describe the child's drawing style in a few words (e.g. 'crayon, bright colors, simple shapes')",
  "childDescription": "if the user provided a text description, include it here verbatim; otherwise empty string"
}

Rules:
- Keep all descriptions short and child-friendly.
- If the image is unclear, make reasonable, positive assumptions.
- For each character, capture enough visual detail so an image generator can reproduce the character consistently across multiple scenes.
- If there are no clear characters, invent one friendly character that fits the drawing.`

// BuildDrawingParsePrompt は絵の解析プロンプトを返します。
// hint には子供や保護者が添えた自由記述（任意）を渡すのだ。
func BuildDrawingParsePrompt(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return DrawingParse
	}
	return fmt.Sprintf("%s\n\nThe child described the drawing as: %q", DrawingParse, hint)
}

// BuildPageTextPrompt は解析済みの絵から、ページごとの本文を
// JSON配列で生成させるプロンプトを組み立てます。
func BuildPageTextPrompt(desc domain.DrawingDescription, lang domain.Language) string {
	// プロンプトに埋めるのは整形済みJSON。モデルが構造を参照しやすいのだ
	parsed, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		parsed = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are a children's story writer. Using ONLY the following structured description of a child's drawing, write a short story for ages 4-8.\n\n")
	b.WriteString("Parsed drawing description (JSON):\n")
	b.Write(parsed)
	b.WriteString("\n\nRequirements:\n")
	fmt.Fprintf(&b, "- Write in %s. Use simple vocabulary suitable for Grade 2-3 reading level.\n", lang.DisplayName())
	b.WriteString("- Fun, whimsical tone. No dark, scary, or violent content.\n")
	b.WriteString("- Story length: 5-10 pages. Each \"page\" is 1-3 short sentences that fit on one illustrated page.\n")
	b.WriteString("- Reference the drawing's characters BY THE SAME NAME/DESCRIPTION given above. Do not invent major new characters or places.\n")
	b.WriteString("- Clear beginning, middle, and end. End with a positive message or gentle lesson.\n")
	b.WriteString("- Each page should describe a scene that can be illustrated (action, location, characters present).\n\n")
	b.WriteString("Output format: respond with ONLY a JSON array of strings, one string per page. No markdown, no explanation.\n")
	b.WriteString(`Example: ["Page 1 text.", "Page 2 text.", ...]`)
	return b.String()
}

// BuildDescriptionPrompt は絵が無い場合に、自由記述だけから
// ページ本文を生成させるプロンプトです。
func BuildDescriptionPrompt(description string, lang domain.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a magical, child-friendly story based on this description: %q\n\n", description)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Write the story in %s.\n", lang.DisplayName())
	b.WriteString("- 200-300 words total. For ages 4-8, Grade 2-3 reading level.\n")
	b.WriteString("- Simple, engaging language. Themes of adventure, friendship, or wonder. Positive and uplifting.\n")
	b.WriteString("- Clear beginning, middle, and end. Include the described elements as main characters.\n")
	b.WriteString("- End with a positive message or lesson.\n")
	b.WriteString("- Each page should describe a scene that can be illustrated.\n\n")
	b.WriteString("Output: respond with ONLY a JSON array of 5-10 strings, one per page (1-3 sentences each). No markdown.\n")
	b.WriteString(`Example: ["Page 1 text.", "Page 2 text.", ...]`)
	return b.String()
}

// IllustrationStyleSuffix は全ページの画像プロンプト末尾に付ける固定のスタイル句です。
// Imagen はプロンプト先頭を主題、末尾をスタイル修飾として重み付けするため、
// 必ずシーン記述の後ろに置くこと。
const IllustrationStyleSuffix = "vibrant 2D flat children's picture book illustration, " +
	"bright saturated colors, clean bold outlines, " +
	"cute expressive characters with large friendly eyes, " +
	"detailed storybook background, " +
	"by a professional children's book illustrator, high quality, detailed"

// BuildSceneExpansionPrompt はページ本文を画像モデル向けの視覚ブリーフへ
// 膨らませるプロンプトを組み立てます。
// previousSummary には直前ページの展開済みシーン（切り詰め済み）を渡すのだ。
func BuildSceneExpansionPrompt(pageText, previousSummary, characterDNA string, pageNum, totalPages int) string {
	var stageNote string
	switch {
	case pageNum <= 1:
		stageNote = "This is the OPENING scene. Establish the world and main character warmly and invitingly."
	case pageNum >= totalPages:
		stageNote = "This is the FINAL scene. Show resolution, happiness, and a satisfying sense of completion."
	default:
		stageNote = fmt.Sprintf("This is scene %d of %d — mid-story. Show clear narrative progress.", pageNum, totalPages)
	}

	var b strings.Builder
	b.WriteString("You are a storyboard artist writing a visual brief for a children's picture-book illustrator.\n\n")
	fmt.Fprintf(&b, "Story page text: %q\n", pageText)
	if characterDNA != "" {
		fmt.Fprintf(&b, "Characters: %s\n", characterDNA)
		b.WriteString("CRITICAL: Never change any character's gender, species, colors, or clothing from the description above.\n")
	}
	if previousSummary != "" {
		fmt.Fprintf(&b, "\nPrevious illustration summary: %q\n", previousSummary)
		b.WriteString("CRITICAL: This new scene must look CLEARLY DIFFERENT from the previous one. Change: the location OR time of day OR weather OR the characters' positions/actions OR the color mood — ideally several of these at once. The reader must be able to tell the story has moved forward.\n")
	}
	b.WriteString(stageNote)
	b.WriteString("\n\nWrite EXACTLY 2 sentences describing what to paint:\n")
	b.WriteString("1. The main action and characters' expressions/poses in the foreground.\n")
	b.WriteString("2. The setting: time of day, weather, indoor/outdoor, key colors and lighting mood, plus one unique memorable detail and the camera framing (wide shot / close-up / bird's-eye / low angle).\n\n")
	b.WriteString("Be specific and vivid. Output ONLY the description — no labels or preamble.")
	return b.String()
}

// BuildIllustrationPrompt は挿絵1枚分の画像生成プロンプトを組み立てます。
// 並び順が重要なのだ: シーン → キャラクター → スタイル句。
func BuildIllustrationPrompt(expandedScene, characterDNA string) string {
	parts := []string{strings.TrimSpace(expandedScene)}
	if characterDNA != "" {
		parts = append(parts, "Characters in this scene: "+characterDNA)
	}
	parts = append(parts, IllustrationStyleSuffix)
	return strings.Join(parts, ". ")
}

// BuildTitleSummaryPrompt は物語全文からタイトルと要約をJSONで生成させます。
func BuildTitleSummaryPrompt(fullText string) string {
	var b strings.Builder
	b.WriteString("You are naming a children's picture book. Read the story below and produce a title and a summary.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- The title must be creative and AT MOST 8 words. Do NOT simply restate the story's opening sentence.\n")
	b.WriteString("- The summary must be a single sentence of at most 120 characters.\n")
	b.WriteString("- Respond with ONLY valid JSON: {\"title\": \"...\", \"summary\": \"...\"}. No markdown.\n\n")
	b.WriteString("Story:\n---\n")
	b.WriteString(fullText)
	b.WriteString("\n---")
	return b.String()
}
