package workflow

import "github.com/shouni/go-reve-kit/pkg/domain"

// EventType は生成パイプラインが配信する進捗イベントの種別です。
type EventType string

const (
	// EventSearching は参考情報の収集を始めたことを示します。
	EventSearching EventType = "searching"
	// EventAcknowledgement は指示を受理した短い応答です。
	EventAcknowledgement EventType = "acknowledgement"
	// EventPlan は構成プラン（3案）の確定を示します。
	EventPlan EventType = "plan"
	// EventFollowUps はフォローアップ提案（最大4件）の配信です。
	EventFollowUps EventType = "follow_ups"
	// EventImage は 1 案分の画像が完成したことを示します。
	EventImage EventType = "image"
	// EventImageFailed は 1 案分の生成が失敗したことを示します。
	// リトライペイロードは Variation に含まれます。
	EventImageFailed EventType = "image_failed"
	// EventDone はパイプライン全体の完了を示します。
	EventDone EventType = "done"
	// EventError はプラン生成などパイプライン自体の失敗を示します。
	EventError EventType = "error"
)

// Event は生成パイプラインの進捗 1 件分なのだ。
// Type に応じて使われるフィールドが決まります。
type Event struct {
	Type      EventType
	Message   string
	Plan      *domain.GenerationPlan
	FollowUps []string
	Variation *domain.ImageVariation
	Index     int // バリエーション連番（0 始まり）
}
