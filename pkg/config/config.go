package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel    = "gemini-3-flash-preview"
	DefaultImageModel     = "gemini-3-pro-image-preview"
	DefaultRateInterval   = 10 * time.Second
	DefaultEditCandidates = 3
)

// Config は Go Reve Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiModel string // 構成案・物体検出などテキスト系のモデル
	ImageModel  string // 画像生成・編集のモデル

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	RateInterval   time.Duration
	EditCandidates int // 編集リクエストの同時発行数

	// --- Storage & Output Settings ---
	ServiceURL string // アルバム永続化サービスのベースURL

	// --- Timeout & Retries ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:    DefaultGeminiModel,
		ImageModel:     DefaultImageModel,
		RateInterval:   DefaultRateInterval,
		EditCandidates: DefaultEditCandidates,
		RequestTimeout: 5 * time.Minute,
	}
}

// NewConfig はデフォルト値で初期化された Config を作成し、必要最小限の値をセットして返すのだ。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}
