// Package bookconv は既存の長文テキストを児童向けの絵本へ変換する
// オーケストレータです。平易化 → 登場人物抽出 → 場面特定 → 挿絵生成の
// 順で逐次実行するのだ。
package bookconv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
	"github.com/shouni/go-storybook-kit/pkg/prompts"
	"github.com/shouni/go-storybook-kit/pkg/storage"
	"github.com/shouni/go-storybook-kit/pkg/storybook"
)

// ErrNoScenes は平易化済みテキストから挿絵にできる場面を
// 1つも特定できなかったことを示す番兵エラーです。
var ErrNoScenes = errors.New("挿絵にできる場面が1つも見つからなかったのだ")

// Config は絵本化パイプラインの調整項目です。
type Config struct {
	ChunkSize     int           // 平易化1リクエストあたりの最大文字数
	MaxScenes     int           // 挿絵にする場面数の上限
	CarryLimit    int           // 次場面へ持ち越す前シーン要約の文字数上限
	AspectRatio   string        // 挿絵のアスペクト比
	ImageInterval time.Duration // 画像生成リクエストの最小間隔
	ImageFolder   string        // BlobStore に渡す保存先ヒント
}

// DefaultConfig は既定値を返すのだ。
func DefaultConfig() Config {
	return Config{
		ChunkSize:     5000,
		MaxScenes:     10,
		CarryLimit:    350,
		AspectRatio:   "4:3",
		ImageInterval: 10 * time.Second,
		ImageFolder:   "books",
	}
}

// Converter は絵本化パイプラインの本体です。
type Converter struct {
	text    storybook.TextGenerator
	image   storybook.ImageGenerator
	store   storage.BlobStore
	limiter *rate.Limiter
	cfg     Config
}

// NewConverter はコンバータを組み立てます。依存はすべて注入なのだ。
func NewConverter(text storybook.TextGenerator, image storybook.ImageGenerator, store storage.BlobStore, cfg Config) *Converter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 5000
	}
	if cfg.MaxScenes <= 0 {
		cfg.MaxScenes = 10
	}
	if cfg.CarryLimit <= 0 {
		cfg.CarryLimit = 350
	}
	if cfg.ImageFolder == "" {
		cfg.ImageFolder = "books"
	}
	interval := cfg.ImageInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Converter{
		text:    text,
		image:   image,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(interval), 2),
		cfg:     cfg,
	}
}

// Convert は生テキスト1冊分を絵本化します。
// 平易化の失敗と場面ゼロだけが致命で、個々の挿絵の失敗は握りつぶすのだ。
func (c *Converter) Convert(ctx context.Context, rawText string) (*domain.BookResult, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("変換するテキストが空なのだ")
	}

	// 1. 固定サイズのチャンクに割って順番に平易化するのだ
	simplified, err := c.simplify(ctx, rawText)
	if err != nil {
		return nil, err
	}

	// 2. 登場人物の外見サマリー。失敗しても空のまま続行するのだ
	charSummary := c.extractCharacters(ctx, simplified)

	// 3. 場面特定。1つも無いなら絵本にできないので致命なのだ
	sceneDescs, err := c.identifyScenes(ctx, simplified)
	if err != nil {
		return nil, err
	}

	// 4. 場面ごとの展開と挿絵生成。carry の持ち越しは物語生成側と同じ仕組みなのだ
	scenes := make([]domain.Scene, 0, len(sceneDescs))
	carry := ""
	for i, desc := range sceneDescs {
		scene, nextCarry := c.expandAndIllustrate(ctx, desc, carry, charSummary, i+1, len(sceneDescs))
		scenes = append(scenes, scene)
		carry = nextCarry
	}

	return &domain.BookResult{
		SimplifiedText:   simplified,
		CharacterSummary: charSummary,
		Scenes:           scenes,
	}, nil
}

// simplify はテキスト全体をチャンク単位で平易化し、空行で連結して返します。
func (c *Converter) simplify(ctx context.Context, rawText string) (string, error) {
	chunks := chunkText(rawText, c.cfg.ChunkSize)
	slog.Info("テキストの平易化を始めるのだ", "chunks", len(chunks), "total_chars", len([]rune(rawText)))

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		simplified, err := c.text.GenerateText(ctx, prompts.BuildSimplifyPrompt(chunk), gemini.TextOptions{})
		if err != nil {
			return "", fmt.Errorf("チャンク %d/%d の平易化に失敗したのだ: %w", i+1, len(chunks), err)
		}
		parts = append(parts, strings.TrimSpace(simplified))
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractCharacters は登場人物の外見サマリーを構築します。失敗時は空文字列なのだ。
func (c *Converter) extractCharacters(ctx context.Context, simplified string) string {
	type character struct {
		Name       string `json:"name"`
		Appearance string `json:"appearance"`
	}

	raw, err := c.text.GenerateText(ctx, prompts.BuildExtractCharactersPrompt(simplified), gemini.TextOptions{})
	if err != nil {
		slog.Warn("登場人物の抽出に失敗したのだ。外見の一貫性は保証されないのだ", "error", err)
		return ""
	}

	chars, err := gemini.DecodeJSON[[]character](raw)
	if err != nil {
		slog.Warn("登場人物リストのJSONが不正だったのだ", "error", err)
		return ""
	}

	lines := make([]string, 0, len(chars))
	for _, ch := range chars {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			continue
		}
		line := fmt.Sprintf("%q", name)
		if look := strings.TrimSpace(ch.Appearance); look != "" {
			line += " — " + look
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, ". ")
}

// identifyScenes は挿絵にする場面の一覧を取得します。
func (c *Converter) identifyScenes(ctx context.Context, simplified string) ([]string, error) {
	raw, err := c.text.GenerateText(ctx, prompts.BuildSceneIdentificationPrompt(simplified), gemini.TextOptions{})
	if err != nil {
		return nil, fmt.Errorf("場面特定に失敗したのだ: %w", err)
	}

	descs, err := gemini.DecodeJSON[[]string](raw)
	if err != nil {
		return nil, fmt.Errorf("場面リストのJSONが不正なのだ: %w", err)
	}

	cleaned := make([]string, 0, len(descs))
	for _, d := range descs {
		if s := strings.TrimSpace(d); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoScenes
	}
	if len(cleaned) > c.cfg.MaxScenes {
		slog.Warn("場面数が上限を超えたので切り詰めるのだ", "scenes", len(cleaned), "max", c.cfg.MaxScenes)
		cleaned = cleaned[:c.cfg.MaxScenes]
	}
	return cleaned, nil
}

// expandAndIllustrate は1場面分の展開と挿絵生成を行います。
// 失敗してもこの場面の ImageURL が空になるだけなのだ。
func (c *Converter) expandAndIllustrate(ctx context.Context, desc, carry, charSummary string, num, total int) (domain.Scene, string) {
	scene := domain.Scene{Index: num, Description: desc}

	expanded, err := c.text.GenerateText(ctx, prompts.BuildSceneExpansionPrompt(desc, carry, charSummary, num, total), gemini.TextOptions{})
	if err != nil {
		slog.Warn("場面展開に失敗したので記述をそのまま使うのだ", "scene", num, "error", err)
		expanded = desc
	}

	scene.ImageURL = c.illustrate(ctx, prompts.BuildBookIllustrationPrompt(expanded, charSummary), num)
	return scene, truncateRunes(expanded, c.cfg.CarryLimit)
}

func (c *Converter) illustrate(ctx context.Context, prompt string, num int) string {
	if err := c.limiter.Wait(ctx); err != nil {
		slog.Warn("レート制限の待機が中断されたのだ", "scene", num, "error", err)
		return ""
	}

	img, err := c.image.GenerateImage(ctx, prompt, gemini.ImageOptions{AspectRatio: c.cfg.AspectRatio})
	if err != nil {
		slog.Warn("場面の挿絵生成に失敗したのだ", "scene", num, "error", err)
		return ""
	}

	url, err := c.store.Put(ctx, img.Data, img.MIMEType, c.cfg.ImageFolder)
	if err != nil {
		slog.Warn("アップロードに失敗したのでデータURLで代替するのだ", "scene", num, "error", err)
		return storage.DataURL(img.Data, img.MIMEType)
	}
	return url
}

// chunkText は文字数ベースの固定サイズでテキストを分割します。
// 意味的な区切りは不要で、リクエストサイズの上限を守ることだけが目的なのだ。
func chunkText(s string, size int) []string {
	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
