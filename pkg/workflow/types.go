package workflow

import (
	"context"
	"time"

	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/generator"
	"github.com/shouni/go-reve-kit/pkg/publisher"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
	defaultTTL             = 5 * time.Minute
)

// WorkflowBuilder は、画像スタジオの各処理ランナーを構築するためのビルダー・インターフェースを定義します。
type WorkflowBuilder interface {
	BuildPlanRunner() (PlanRunner, error)
	BuildDetectRunner() (DetectRunner, error)
	BuildVariationRunner() (VariationRunner, error)
	BuildEditRunner() (EditRunner, error)
	BuildPublishRunner() (PublishRunner, error)
}

// PlanRunner は、ユーザーの指示文から 3 案の構成プランを生成する責務を持ちます。
type PlanRunner interface {
	Run(ctx context.Context, prompt string, sourceCount int, contextURL string) (domain.GenerationPlan, error)
}

// DetectRunner は、画像を解析して階層つきオブジェクトの森を返す責務を持ちます。
type DetectRunner interface {
	Run(ctx context.Context, imageData []byte, mimeType string) ([]*domain.DetectedObject, error)
}

// VariationRunner は、構成プランの各案を画像へ具現化する責務を持ちます。
// 失敗した案はエラーではなく、リトライペイロード付きのバリエーションとして返します。
type VariationRunner interface {
	Materialize(ctx context.Context, planned domain.PlannedVariation, sourceURLs []string) domain.ImageVariation
	Retry(ctx context.Context, payload domain.RetryPayload) domain.ImageVariation
}

// EditRunner は、マスク制約つき編集と再配置編集を実行する責務を持ちます。
type EditRunner interface {
	MaskEdit(ctx context.Context, sourceURL, instruction, label string, box domain.BoundingBox) (domain.ImageVariation, error)
	RepositionEdit(ctx context.Context, sourceURL string, moves []generator.ObjectMove) (domain.ImageVariation, error)
}

// PublishRunner は、アルバムをギャラリー（Markdown / HTML）として書き出す責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, album domain.Album, outputDir string) (publisher.PublishResult, error)
}
