package domain

import "time"

// GenerationPlan はテキストモデルが返す構成案です。
// 必ず 3 案のバリエーションと、最大 4 件のフォローアップ提案を持ちます。
type GenerationPlan struct {
	Acknowledgement string             `json:"acknowledgement"`
	Variations      []PlannedVariation `json:"variations"`
	FollowUps       []string           `json:"follow_up_suggestions"`
}

// PlannedVariation は構成案の 1 エントリ（タイトル・説明・生成プロンプト）です。
type PlannedVariation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// ImageVariation は構成案から実体化された 1 枚の候補画像です。
// 失敗した場合は画像の代わりにエラーメッセージと再試行ペイロードを保持します。
type ImageVariation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	// インラインデータ。サービスへ保存する前の一時的な保持にのみ使うのだ。
	Data     []byte `json:"-"`
	MimeType string `json:"-"`

	Failed       bool          `json:"failed,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Retry        *RetryPayload `json:"retry,omitempty"`

	// 検出結果のキャッシュ。再検出を避けるために保持します。
	Objects []*DetectedObject `json:"objects,omitempty"`
}

// RetryPayload は失敗した生成をまったく同じ入力で再実行するための記録です。
// 再試行は自動では行われず、ユーザー操作で再提出されます。
type RetryPayload struct {
	Variation  PlannedVariation `json:"variation"`
	SourceURLs []string         `json:"source_urls,omitempty"`
	Prompt     string           `json:"prompt"`
}
