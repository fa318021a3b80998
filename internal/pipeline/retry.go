package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// ExecuteRetry は、アルバムに記録された失敗バリエーションのリトライペイロードを
// 取り出し、同一のプロンプトとソース画像で生成をやり直すのだ。
// 成功したら画像をアルバムへ取り込み、履歴の失敗エントリを結果で差し替えます。
func ExecuteRetry(ctx context.Context, cfg *config.Config) error {
	client := albums.NewClient(cfg.ServiceURL, config.DefaultHTTPTimeout)

	album, err := client.Get(ctx, cfg.Options.AlbumID)
	if err != nil {
		return fmt.Errorf("アルバムの取得に失敗したのだ: %w", err)
	}

	payload, ok := album.FindRetryPayload(cfg.Options.RetryID)
	if !ok {
		return fmt.Errorf("バリエーション %q のリトライ情報が見つからないのだ", cfg.Options.RetryID)
	}

	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	variationRunner, err := appCtx.Manager.BuildVariationRunner()
	if err != nil {
		return fmt.Errorf("VariationRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("失敗したバリエーションを再生成するのだ！",
		"variation", cfg.Options.RetryID, "title", payload.Variation.Title)

	result := variationRunner.Retry(ctx, *payload)
	if result.Failed {
		return fmt.Errorf("再生成も失敗したのだ: %s", result.ErrorMessage)
	}

	uploaded, err := client.IngestBase64(ctx, albums.Base64Ingest{
		Filename:    result.ID + ".png",
		Data:        base64.StdEncoding.EncodeToString(result.Data),
		Title:       result.Title,
		Description: result.Description,
		AlbumID:     album.ID,
	})
	if err != nil {
		return fmt.Errorf("画像の取り込みに失敗したのだ: %w", err)
	}
	result.ImageURL = uploaded.URL

	// 履歴の失敗エントリを成功した結果で差し替えるのだ
	if album.ReplaceVariation(cfg.Options.RetryID, result) {
		if _, err := client.Update(ctx, album.ID, domain.AlbumUpdate{
			ChatHistory: &album.ChatHistory,
		}); err != nil {
			return fmt.Errorf("アルバムの更新に失敗したのだ: %w", err)
		}
	}

	slog.Info("再生成が完了したのだ！",
		"variation", result.ID, "title", result.Title, "url", result.ImageURL)
	return nil
}
