package domain

import (
	"crypto/sha256"
	"encoding/binary"
)

// DrawingCharacter は子供の絵から読み取った登場人物1体の情報を保持します。
type DrawingCharacter struct {
	Name       string `json:"name"`
	Appearance string `json:"appearance"` // 生成プロンプトに注入する外見上の特徴
	Gender     string `json:"gender"`
}

// DrawingDescription は絵の解析結果（構造化された描写）全体の構造です。
type DrawingDescription struct {
	Characters       []DrawingCharacter `json:"characters"`
	Setting          string             `json:"setting"`
	Objects          []string           `json:"objects"`
	Mood             string             `json:"mood"`
	Colors           []string           `json:"colors"`
	ArtStyle         string             `json:"artStyle"`
	ChildDescription string             `json:"childDescription"`
}

// EnsureCharacter は登場人物が1体も無い解析結果に既定の主人公を補うのだ。
// 絵の解析はモデル任せなので、空のまま下流へ流さないための安全網です。
func (d *DrawingDescription) EnsureCharacter() {
	if len(d.Characters) > 0 {
		return
	}
	d.Characters = []DrawingCharacter{{
		Name:       "the little hero",
		Appearance: "a cheerful child with bright eyes and a big smile",
		Gender:     "unknown",
	}}
}

// Page は絵本の1ページ（本文と挿絵）を表します。
// ImageURL が空文字の場合、本文はあるが挿絵の生成に失敗したことを意味します。
// 失敗したページでも imageUrl フィールド自体は出力に残すのだ。
type Page struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// StoryResult は物語生成パイプラインの最終成果物です。
type StoryResult struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Pages    []Page `json:"pages"`
	FullText string `json:"fullText"`

	// Fallback は AI 生成が失敗し、缶詰の代替ストーリーを返したことを示すのだ。
	Fallback bool `json:"fallback,omitempty"`
}

// Scene は長文テキストから特定された挿絵候補の1場面です。
type Scene struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// BookResult は既存の本テキストを絵本化した成果物です。
type BookResult struct {
	SimplifiedText   string  `json:"simplifiedText"`
	CharacterSummary string  `json:"characterSummary"`
	Scenes           []Scene `json:"scenes"`
}

// InlineImage はリクエストに同梱する画像バイト列（子供の絵など）です。
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// GeneratedImage は画像モデルが返した生バイト列と MIME タイプを保持します。
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// GetSeedFromName は登場人物名から決定論的なシード値を生成します。
// 同じ名前なら常に同じシードになるため、ページをまたいだ外見の一貫性に使えるのだ。
func GetSeedFromName(name string) int32 {
	hash := sha256.Sum256([]byte(name))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Geminiのシード値は正の数が望ましいため、最上位ビットを落とすのが安全なのだ
	return seed & 0x7FFFFFFF
}
