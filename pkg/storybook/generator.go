package storybook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
	"github.com/shouni/go-storybook-kit/pkg/prompts"
	"github.com/shouni/go-storybook-kit/pkg/storage"
)

// Config は物語生成パイプラインの調整項目です。
type Config struct {
	MaxPages      int           // ページ数の上限
	CarryLimit    int           // 次ページへ持ち越す前シーン要約の文字数上限
	AspectRatio   string        // 挿絵のアスペクト比
	ImageInterval time.Duration // 画像生成リクエストの最小間隔
	ImageFolder   string        // BlobStore に渡す保存先ヒント

	Title TitleConfig
}

// DefaultConfig は実運用で使っている既定値を返すのだ。
func DefaultConfig() Config {
	return Config{
		MaxPages:      10,
		CarryLimit:    350,
		AspectRatio:   "4:3",
		ImageInterval: 10 * time.Second,
		ImageFolder:   "stories",
		Title:         DefaultTitleConfig(),
	}
}

// Generator は絵の解析からタイトル生成までを逐次実行するオーケストレータです。
// ページ間には「前シーン要約」の持ち越しがあるため、並列化はできないのだ。
type Generator struct {
	text    TextGenerator
	image   ImageGenerator
	store   storage.BlobStore
	limiter *rate.Limiter
	cfg     Config
}

// NewGenerator はオーケストレータを組み立てます。
// ゲートウェイとストレージは外から注入し、本体はグローバル状態を持ちません。
func NewGenerator(text TextGenerator, image ImageGenerator, store storage.BlobStore, cfg Config) *Generator {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.CarryLimit <= 0 {
		cfg.CarryLimit = 350
	}
	if cfg.ImageFolder == "" {
		cfg.ImageFolder = "stories"
	}
	interval := cfg.ImageInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Generator{
		text:  text,
		image: image,
		store: store,
		// 画像エンドポイントの分間レート制限を守るため、バースト2で間隔を空けるのだ
		limiter: rate.NewLimiter(rate.Every(interval), 2),
		cfg:     cfg,
	}
}

// Request は物語生成1回分の入力です。
type Request struct {
	Description string
	Language    domain.Language
	Drawing     *domain.InlineImage // 子供の絵。省略可なのだ
}

// GenerateStory は絵（任意）と自由記述から絵本を1冊生成します。
// ページ本文の生成に完全に失敗した場合のみ、缶詰のフォールバック作品を
// Fallback フラグ付きで返すのだ。挿絵の失敗はページ単位で握りつぶします。
func (g *Generator) GenerateStory(ctx context.Context, req Request) (*domain.StoryResult, error) {
	lang := req.Language.Normalize()

	// 1. 絵の解析。失敗しても記述ベースの生成に切り替えるだけで、致命傷ではないのだ
	desc, parsed := g.parseDrawing(ctx, req)

	// 2. ページ本文の生成。ここの失敗だけがパイプライン全体の失敗なのだ
	pageTexts, err := g.generatePageTexts(ctx, desc, parsed, req.Description, lang)
	if err != nil {
		slog.Error("ページ本文を生成できなかったので缶詰ストーリーで代替するのだ", "error", err)
		return FallbackStory(req.Description, lang), nil
	}

	// 3. キャラクターDNAは1回だけ構築し、全ページで同じ文字列を使い回す。
	// 主人公名から決めたシードも全ページ共通で、外見のブレを抑えるのだ
	var dna string
	var seed *int32
	if parsed {
		dna = prompts.BuildCharacterDNA(desc)
		if len(desc.Characters) > 0 {
			s := domain.GetSeedFromName(desc.Characters[0].Name)
			seed = &s
		}
	}

	// 4. ページごとの展開と挿絵生成。carry が前シーン要約の明示的なアキュムレータなのだ
	pages := make([]domain.Page, 0, len(pageTexts))
	carry := ""
	for i, text := range pageTexts {
		page, nextCarry := g.expandAndIllustrate(ctx, text, carry, dna, seed, i+1, len(pageTexts))
		pages = append(pages, page)
		carry = nextCarry
	}

	fullText := strings.Join(pageTexts, "\n\n")

	// 5. タイトルと要約。失敗してもヒューリスティックで補えるので非致命なのだ
	title, summary := g.generateTitleSummary(ctx, fullText, pageTexts[0], lang)

	return &domain.StoryResult{
		Title:    title,
		Summary:  summary,
		Pages:    pages,
		FullText: fullText,
	}, nil
}

// parseDrawing は子供の絵を構造化された描写へ解析します。
// 絵が無い、または解析に失敗した場合は parsed=false を返すのだ。
func (g *Generator) parseDrawing(ctx context.Context, req Request) (domain.DrawingDescription, bool) {
	var desc domain.DrawingDescription
	if req.Drawing == nil || len(req.Drawing.Data) == 0 {
		return desc, false
	}

	raw, err := g.text.GenerateTextFromImage(ctx, *req.Drawing, prompts.BuildDrawingParsePrompt(req.Description), gemini.TextOptions{})
	if err != nil {
		slog.Warn("絵の解析に失敗したので記述ベースの生成に切り替えるのだ", "error", err)
		return desc, false
	}

	desc, err = gemini.DecodeJSON[domain.DrawingDescription](raw)
	if err != nil {
		slog.Warn("絵の解析結果のJSONが不正だったのだ", "error", err)
		return domain.DrawingDescription{}, false
	}

	// 登場人物ゼロのまま下流に流さない
	desc.EnsureCharacter()
	return desc, true
}

// generatePageTexts はページ本文のJSON配列を取得して検証します。
func (g *Generator) generatePageTexts(ctx context.Context, desc domain.DrawingDescription, parsed bool, description string, lang domain.Language) ([]string, error) {
	var prompt string
	if parsed {
		prompt = prompts.BuildPageTextPrompt(desc, lang)
	} else {
		prompt = prompts.BuildDescriptionPrompt(description, lang)
	}

	raw, err := g.text.GenerateText(ctx, prompt, gemini.TextOptions{})
	if err != nil {
		return nil, err
	}

	pageTexts, err := gemini.DecodeJSON[[]string](raw)
	if err != nil {
		return nil, err
	}

	// 空要素を除いたうえで、1ページも無ければ失敗扱いなのだ
	cleaned := make([]string, 0, len(pageTexts))
	for _, t := range pageTexts {
		if s := strings.TrimSpace(t); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("モデルが1ページも返さなかったのだ: %w", gemini.ErrMalformedResponse)
	}
	if len(cleaned) > g.cfg.MaxPages {
		slog.Warn("ページ数が上限を超えたので切り詰めるのだ", "pages", len(cleaned), "max", g.cfg.MaxPages)
		cleaned = cleaned[:g.cfg.MaxPages]
	}
	return cleaned, nil
}

// expandAndIllustrate は1ページ分のシーン展開と挿絵生成を行い、
// 次ページへ持ち越す要約（切り詰め済み）を返します。
// 挿絵の失敗はこのページの ImageURL を空にするだけで、処理は続行するのだ。
func (g *Generator) expandAndIllustrate(ctx context.Context, pageText, carry, dna string, seed *int32, pageNum, total int) (domain.Page, string) {
	page := domain.Page{Text: pageText}

	expanded, err := g.text.GenerateText(ctx, prompts.BuildSceneExpansionPrompt(pageText, carry, dna, pageNum, total), gemini.TextOptions{})
	if err != nil {
		// 展開に失敗したら本文そのものを視覚ブリーフとして使うのだ
		slog.Warn("シーン展開に失敗したので本文をそのまま使うのだ", "page", pageNum, "error", err)
		expanded = pageText
	}

	page.ImageURL = g.illustrate(ctx, prompts.BuildIllustrationPrompt(expanded, dna), seed, pageNum)

	// 挿絵の成否にかかわらず、展開済みシーンを次ページの文脈として持ち越す
	return page, truncateRunes(expanded, g.cfg.CarryLimit)
}

// illustrate は挿絵を1枚生成してアップロードし、URLを返します。
// 失敗時は空文字列を返すのだ。
func (g *Generator) illustrate(ctx context.Context, prompt string, seed *int32, pageNum int) string {
	if err := g.limiter.Wait(ctx); err != nil {
		slog.Warn("レート制限の待機が中断されたのだ", "page", pageNum, "error", err)
		return ""
	}

	img, err := g.image.GenerateImage(ctx, prompt, gemini.ImageOptions{AspectRatio: g.cfg.AspectRatio, Seed: seed})
	if err != nil {
		slog.Warn("挿絵の生成に失敗したのだ。本文だけのページになるのだ", "page", pageNum, "error", err)
		return ""
	}

	url, err := g.store.Put(ctx, img.Data, img.MIMEType, g.cfg.ImageFolder)
	if err != nil {
		// アップロードできなくても画像は手元にあるので、データURLで埋め込むのだ
		slog.Warn("アップロードに失敗したのでデータURLで代替するのだ", "page", pageNum, "error", err)
		return storage.DataURL(img.Data, img.MIMEType)
	}
	return url
}

// generateTitleSummary はタイトルと要約を生成し、怪しい結果を
// ヒューリスティックで差し替えます。
func (g *Generator) generateTitleSummary(ctx context.Context, fullText, firstPage string, lang domain.Language) (string, string) {
	type titleSummary struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}

	fallbackTitle := GenericTitle(lang)
	fallbackSummary := truncateAtWord(fullText, g.cfg.Title.SummaryLimit)

	raw, err := g.text.GenerateText(ctx, prompts.BuildTitleSummaryPrompt(fullText), gemini.TextOptions{})
	if err != nil {
		slog.Warn("タイトル生成に失敗したので汎用タイトルを使うのだ", "error", err)
		return fallbackTitle, fallbackSummary
	}

	ts, err := gemini.DecodeJSON[titleSummary](raw)
	if err != nil {
		slog.Warn("タイトル応答のJSONが不正だったのだ", "error", err)
		return fallbackTitle, fallbackSummary
	}

	title := strings.TrimSpace(ts.Title)
	if !g.cfg.Title.Plausible(title, firstPage) {
		slog.Warn("生成されたタイトルが怪しいので汎用タイトルに差し替えるのだ", "title", truncateRunes(title, 40))
		title = fallbackTitle
	}

	summary := strings.TrimSpace(ts.Summary)
	if summary == "" {
		summary = fallbackSummary
	}
	return title, summary
}

// truncateRunes は文字数ベースで安全に切り詰めるヘルパーなのだ。
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// truncateAtWord は単語境界を尊重しつつ limit 文字以内に切り詰めます。
func truncateAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return strings.TrimSpace(s)
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
