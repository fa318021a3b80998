package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/generator"
)

// VariationImageRunner は、構成プランの各案を実際の画像へ具現化します。
// 1 案の失敗は他の案に波及させず、失敗した案にはリトライ用の入力一式を残すのだ。
type VariationImageRunner struct {
	cfg      config.Config
	composer *generator.StudioComposer
}

// NewVariationImageRunner は依存関係を注入して初期化します。
func NewVariationImageRunner(cfg config.Config, composer *generator.StudioComposer) *VariationImageRunner {
	return &VariationImageRunner{
		cfg:      cfg,
		composer: composer,
	}
}

// Materialize は 1 案を画像化します。失敗してもエラーは返さず、
// Failed フラグとリトライペイロードを積んだバリエーションを返すのだ。
func (vr *VariationImageRunner) Materialize(ctx context.Context, planned domain.PlannedVariation, sourceURLs []string) domain.ImageVariation {
	variation := domain.ImageVariation{
		ID:          uuid.NewString(),
		Title:       planned.Title,
		Description: planned.Description,
		CreatedAt:   time.Now(),
	}

	resp, err := vr.generate(ctx, planned.Prompt, sourceURLs)
	if err != nil {
		slog.WarnContext(ctx, "バリエーションの生成に失敗しました",
			"title", planned.Title, "error", err)
		variation.Failed = true
		variation.ErrorMessage = FailureMessage(err)
		variation.Retry = &domain.RetryPayload{
			Variation:  planned,
			SourceURLs: append([]string(nil), sourceURLs...),
			Prompt:     planned.Prompt,
		}
		return variation
	}

	variation.Data = resp.Data
	variation.MimeType = resp.MimeType
	return variation
}

// Retry は失敗した案を、元と同一の入力でもう一度だけ画像化するのだ。
func (vr *VariationImageRunner) Retry(ctx context.Context, payload domain.RetryPayload) domain.ImageVariation {
	return vr.Materialize(ctx, payload.Variation, payload.SourceURLs)
}

func (vr *VariationImageRunner) generate(ctx context.Context, prompt string, sourceURLs []string) (*imagedom.ImageResponse, error) {
	if err := vr.composer.RateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レートリミッターの待機に失敗しました: %w", err)
	}

	uris, err := vr.composer.PrepareAssets(ctx, sourceURLs)
	if err != nil {
		return nil, fmt.Errorf("参照画像の準備に失敗しました: %w", err)
	}

	resp, err := vr.composer.Engine.GenerateMangaPage(ctx, imagedom.ImagePageRequest{
		Prompt:      prompt,
		FileAPIURIs: uris,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoImageData
	}
	return resp, nil
}
