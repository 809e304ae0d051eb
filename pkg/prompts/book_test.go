package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSimplifyPrompt(t *testing.T) {
	got := BuildSimplifyPrompt("The protagonist embarked on an arduous journey.")
	assert.Contains(t, got, "aged 7-10")
	assert.Contains(t, got, "The protagonist embarked on an arduous journey.")
	assert.Contains(t, got, "Preserve the core plot EXACTLY")
}

func TestBuildSceneIdentificationPrompt(t *testing.T) {
	got := BuildSceneIdentificationPrompt("The rabbit found a key.")
	assert.Contains(t, got, "2-4 key moments")
	assert.Contains(t, got, "The rabbit found a key.")
	assert.Contains(t, got, "JSON array of strings")
}

func TestBuildExtractCharactersPrompt(t *testing.T) {
	got := BuildExtractCharactersPrompt("Luna and Max walked home.")
	assert.Contains(t, got, "every named character")
	assert.Contains(t, got, "Luna and Max walked home.")
}

func TestBuildBookIllustrationPrompt(t *testing.T) {
	t.Run("スタイル、キャラクター、シーンの順で改行連結されること", func(t *testing.T) {
		got := BuildBookIllustrationPrompt("The rabbit opens the door.", `"Luna" — white rabbit`)
		lines := strings.Split(got, "\n")
		assert.Len(t, lines, 3)
		assert.Contains(t, lines[0], "picture book style")
		assert.Contains(t, lines[1], "keep consistent")
		assert.Contains(t, lines[2], "The rabbit opens the door.")
	})

	t.Run("キャラクター要約が空なら2行になること", func(t *testing.T) {
		got := BuildBookIllustrationPrompt("A sunny field.", "")
		assert.Len(t, strings.Split(got, "\n"), 2)
	})
}
