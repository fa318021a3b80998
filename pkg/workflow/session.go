package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// OutputWriter は生成画像の保存先への最小限の契約です。
// remoteio.OutputWriter がこれを満たします。
type OutputWriter interface {
	Write(ctx context.Context, path string, data io.Reader, mimeType string) error
}

// GenerateRequest は生成パイプライン 1 回分の入力です。
type GenerateRequest struct {
	Prompt     string
	SourceURLs []string // 添付されたソース画像（任意）
	ContextURL string   // 参考情報の抽出元URL（任意）
	OutputDir  string   // 成功した画像の保存先ディレクトリ
}

// GenerationSession は、プラン生成から画像の具現化までを 1 本のイベント列として配信します。
type GenerationSession struct {
	plan       PlanRunner
	variations VariationRunner
	writer     OutputWriter
}

// NewGenerationSession は Manager の Runner 群から生成セッションを組み立てます。
func (m *Manager) NewGenerationSession() (*GenerationSession, error) {
	planRunner, err := m.BuildPlanRunner()
	if err != nil {
		return nil, err
	}
	variationRunner, err := m.BuildVariationRunner()
	if err != nil {
		return nil, err
	}
	return NewGenerationSession(planRunner, variationRunner, m.writer), nil
}

// NewGenerationSession は依存関係を注入して初期化します。
func NewGenerationSession(plan PlanRunner, variations VariationRunner, writer OutputWriter) *GenerationSession {
	return &GenerationSession{
		plan:       plan,
		variations: variations,
		writer:     writer,
	}
}

// Run はパイプラインを非同期に実行し、進捗イベントのチャネルを返すのだ。
// チャネルは EventDone または EventError の配信後に必ず閉じられます。
// 1 案の失敗は EventImageFailed として流れ、残りの案の生成は続行されます。
func (gs *GenerationSession) Run(ctx context.Context, req GenerateRequest) <-chan Event {
	events := make(chan Event, 8)

	go func() {
		defer close(events)

		if req.ContextURL != "" {
			gs.emit(ctx, events, Event{Type: EventSearching, Message: req.ContextURL})
		}

		plan, err := gs.plan.Run(ctx, req.Prompt, len(req.SourceURLs), req.ContextURL)
		if err != nil {
			gs.emit(ctx, events, Event{Type: EventError, Message: err.Error()})
			return
		}

		gs.emit(ctx, events, Event{Type: EventAcknowledgement, Message: plan.Acknowledgement})
		gs.emit(ctx, events, Event{Type: EventPlan, Plan: &plan})
		gs.emit(ctx, events, Event{Type: EventFollowUps, FollowUps: plan.FollowUps})

		// 宣言順に 1 案ずつ具現化するのだ。順序が安定していると
		// 受信側はプランの並びとそのまま突き合わせられます。
		for i, planned := range plan.Variations {
			variation := gs.variations.Materialize(ctx, planned, req.SourceURLs)

			if variation.Failed {
				gs.emit(ctx, events, Event{Type: EventImageFailed, Index: i, Variation: &variation})
				continue
			}

			if err := gs.saveVariation(ctx, req.OutputDir, i, &variation); err != nil {
				slog.WarnContext(ctx, "バリエーションの保存に失敗しました", "index", i, "error", err)
			}
			gs.emit(ctx, events, Event{Type: EventImage, Index: i, Variation: &variation})
		}

		gs.emit(ctx, events, Event{Type: EventDone})
	}()

	return events
}

// saveVariation は成功した画像を連番つきで保存し、ImageURL を書き戻すのだ。
func (gs *GenerationSession) saveVariation(ctx context.Context, outputDir string, index int, v *domain.ImageVariation) error {
	if outputDir == "" || gs.writer == nil {
		return nil
	}

	basePath, err := asset.ResolveOutputPath(outputDir, asset.DefaultVariationFileName)
	if err != nil {
		return fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	path, err := asset.GenerateIndexedPath(basePath, index+1)
	if err != nil {
		return fmt.Errorf("バリエーション %d の出力パス生成に失敗しました: %w", index+1, err)
	}

	if err := gs.writer.Write(ctx, path, bytes.NewReader(v.Data), v.MimeType); err != nil {
		return fmt.Errorf("バリエーション %d の保存に失敗しました (path: %s): %w", index+1, path, err)
	}

	v.ImageURL = path
	return nil
}

// emit はコンテキストのキャンセルを尊重しつつイベントを送出します。
func (gs *GenerationSession) emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
