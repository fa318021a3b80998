package domain

import "time"

// Album はユーザーの作品集です。永続化サービスが所有し、
// クライアントはキャッシュされたコピーを保持するだけなのだ。
type Album struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	CreatedAt     time.Time      `json:"createdAt"`
	GalleryImages []GalleryImage `json:"galleryImages"`
	ChatHistory   []ChatMessage  `json:"chatHistory"`
}

// GalleryImage はサービスに保存された 1 枚の画像メタデータです。
// URL はサーバー側で採番されます。
type GalleryImage struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ImageURL     string            `json:"imageUrl"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Filename     string            `json:"filename,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	Objects      []*DetectedObject `json:"objects,omitempty"`
}

// ChatMessage は生成セッションの会話ログの 1 エントリです。
type ChatMessage struct {
	Role                string           `json:"role"`
	Text                string           `json:"text,omitempty"`
	ImageURLs           []string         `json:"imageUrls,omitempty"`
	Variations          []ImageVariation `json:"variations,omitempty"`
	SourceImageURL      string           `json:"sourceImageUrl,omitempty"`
	FollowUpSuggestions []string         `json:"followUpSuggestions,omitempty"`
	CreatedAt           time.Time        `json:"createdAt,omitempty"`
}

// FindRetryPayload はチャット履歴から指定バリエーションのリトライペイロードを探します。
// 同じIDが複数回現れた場合は最新のエントリが勝つのだ。
func (a Album) FindRetryPayload(variationID string) (*RetryPayload, bool) {
	for i := len(a.ChatHistory) - 1; i >= 0; i-- {
		for j := range a.ChatHistory[i].Variations {
			v := &a.ChatHistory[i].Variations[j]
			if v.ID == variationID && v.Retry != nil {
				return v.Retry, true
			}
		}
	}
	return nil, false
}

// ReplaceVariation はチャット履歴内の指定IDのバリエーションを差し替えます。
// リトライ成功時に失敗エントリを結果で上書きするために使うのだ。
// リトライ結果は新しいIDを持つため、差し替え対象は旧IDで指定します。
func (a *Album) ReplaceVariation(oldID string, v ImageVariation) bool {
	replaced := false
	for i := range a.ChatHistory {
		for j := range a.ChatHistory[i].Variations {
			if a.ChatHistory[i].Variations[j].ID == oldID {
				a.ChatHistory[i].Variations[j] = v
				replaced = true
			}
		}
	}
	return replaced
}

// AlbumUpdate は PUT /api/albums/{id} の部分更新ペイロードです。
// nil のフィールドは「変更しない」を意味するのだ。
type AlbumUpdate struct {
	Title         *string         `json:"title,omitempty"`
	ChatHistory   *[]ChatMessage  `json:"chatHistory,omitempty"`
	GalleryImages *[]GalleryImage `json:"galleryImages,omitempty"`
}
