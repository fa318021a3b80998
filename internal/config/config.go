package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 10 * time.Second
	DefaultServiceHost = "localhost:8080"
	DefaultServiceURL  = "http://localhost:8080"
	DefaultOutputDir   = "output"       // 生成画像とギャラリーのデフォルト保存先なのだ
	DefaultWorkDir     = "output/work"  // マスク等の作業ファイルの置き場なのだ
	DefaultDataDir     = "data"         // アルバム台帳の置き場なのだ
	DefaultUploadsDir  = "data/uploads" // アップロード画像の置き場なのだ
	DefaultObjectsFile = "output/objects.json"
)

// Config はアプリケーション全体の環境設定（APIキーやサービス設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	ServiceURL       string

	Options Options
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ServiceURL:       envutil.GetEnv("REVE_SERVICE_URL", DefaultServiceURL),
	}
	return cfg
}

// Options は CLI フラグから渡される実行時のパラメータなのだ。
type Options struct {
	// 生成関連
	Prompt     string   // --prompt
	SourceURLs []string // --source（複数指定可）
	ContextURL string   // --context-url
	OutputDir  string   // --output-dir
	WorkDir    string   // --work-dir
	RetryID    string   // --retry: 再生成するバリエーションのID

	// 物体検出関連
	ImageFile   string // --image
	ObjectsFile string // --objects-file

	// 編集関連
	ObjectLabel string // --object: 編集対象オブジェクトのラベル
	Instruction string // --instruction: マスク編集の指示文
	MoveTo      string // --move-to: 移動先中心座標 "x,y"（0-1000グリッド）

	// アルバム関連
	AlbumID string // --album

	// サービス関連
	Host       string // --host
	DataDir    string // --data-dir
	UploadsDir string // --uploads-dir

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
}
