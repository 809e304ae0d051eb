package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-storybook-kit/pkg/domain"
	"github.com/shouni/go-storybook-kit/pkg/gemini"
	"github.com/shouni/go-storybook-kit/pkg/narration"
)

// デフォルト値の定義なのだ
const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultImageInterval = 10 * time.Second // 画像生成APIのレート制限対策なのだ
	DefaultAspectRatio   = "4:3"
	DefaultLocalDir      = "output" // 成果物のデフォルト保存先なのだ
	DefaultMinioBucket   = "storybook-assets"
	DefaultSpeed         = 1.0
)

// DefaultLanguage は物語の既定の生成言語なのだ。
const DefaultLanguage = domain.DefaultLanguage

// Config はアプリケーション全体の環境設定（APIキーやストレージ設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string

	Options Options
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", gemini.DefaultTextModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", gemini.DefaultImageModel),

		ElevenLabsAPIKey:  envutil.GetEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: envutil.GetEnv("ELEVENLABS_VOICE_ID", narration.DefaultVoiceID),
		ElevenLabsModelID: envutil.GetEnv("ELEVENLABS_MODEL_ID", narration.DefaultModelID),

		MinioEndpoint:  envutil.GetEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: envutil.GetEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: envutil.GetEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    envutil.GetEnv("MINIO_BUCKET", DefaultMinioBucket),
	}
	return cfg
}

// Options は CLI フラグから渡される実行時のパラメータなのだ。
type Options struct {
	// ソース入力関連
	InputFile   string // --input-file: 絵のファイル・本のテキストファイル・ナレーション対象テキスト
	InputURL    string // --input-url: リモートの入力（Webページや画像）
	Description string // --description: 子どもが絵について話した内容
	Language    string // --language: 物語の言語

	// 生成結果の出力設定
	OutputDir string // --output-dir: 保存先ディレクトリ（ローカル or gs://...）

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// ナレーション設定
	VoiceID string  // --voice: ElevenLabsの音声ID
	Speed   float64 // --speed: 読み上げ速度
	Narrate bool    // --narrate: 物語生成後にナレーションも作るのだ

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
}

// NormalizedLanguage は言語オプションをドメインの列挙値に変換して返します。
func (o Options) NormalizedLanguage() domain.Language {
	return domain.Language(o.Language).Normalize()
}
