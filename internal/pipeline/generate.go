package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/workflow"
)

// ExecuteGenerate は生成パイプラインを実行し、進捗イベントをログに流すのだ。
// --album が指定されていれば、結果をアルバム永続化サービスへ追記します。
func ExecuteGenerate(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	session, err := appCtx.Manager.NewGenerationSession()
	if err != nil {
		return fmt.Errorf("生成セッションの構築に失敗したのだ: %w", err)
	}

	events := session.Run(ctx, workflow.GenerateRequest{
		Prompt:     cfg.Options.Prompt,
		SourceURLs: cfg.Options.SourceURLs,
		ContextURL: cfg.Options.ContextURL,
		OutputDir:  cfg.Options.OutputDir,
	})

	var (
		plan      *domain.GenerationPlan
		followUps []string
		results   []domain.ImageVariation
	)

	for ev := range events {
		switch ev.Type {
		case workflow.EventSearching:
			slog.Info("参考情報を収集しているのだ...", "url", ev.Message)
		case workflow.EventAcknowledgement:
			slog.Info("指示を受理したのだ", "message", ev.Message)
		case workflow.EventPlan:
			plan = ev.Plan
			slog.Info("構成プランが確定したのだ", "variations", len(ev.Plan.Variations))
		case workflow.EventFollowUps:
			followUps = ev.FollowUps
		case workflow.EventImage:
			slog.Info("バリエーションが完成したのだ",
				"index", ev.Index+1, "title", ev.Variation.Title, "path", ev.Variation.ImageURL)
			results = append(results, *ev.Variation)
		case workflow.EventImageFailed:
			slog.Warn("バリエーションの生成に失敗したのだ",
				"index", ev.Index+1, "title", ev.Variation.Title, "reason", ev.Variation.ErrorMessage)
			results = append(results, *ev.Variation)
		case workflow.EventDone:
			slog.Info("生成パイプラインが完了したのだ！")
		case workflow.EventError:
			return fmt.Errorf("生成パイプラインが失敗したのだ: %s", ev.Message)
		}
	}

	if cfg.Options.AlbumID == "" {
		return nil
	}
	return appendToAlbum(ctx, cfg, plan, results, followUps)
}

// appendToAlbum は生成結果をアルバムのチャット履歴とギャラリーに追記するのだ。
func appendToAlbum(ctx context.Context, cfg *config.Config, plan *domain.GenerationPlan, results []domain.ImageVariation, followUps []string) error {
	client := albums.NewClient(cfg.ServiceURL, config.DefaultHTTPTimeout)

	album, err := client.Get(ctx, cfg.Options.AlbumID)
	if err != nil {
		return fmt.Errorf("アルバムの取得に失敗したのだ: %w", err)
	}

	// 取り込み時に albumId を添えると、ギャラリーへの追記はサーバー側で行われるのだ
	ingested := 0
	for i := range results {
		if results[i].Failed || len(results[i].Data) == 0 {
			continue
		}

		uploaded, err := client.IngestBase64(ctx, albums.Base64Ingest{
			Filename:    results[i].ID + ".png",
			Data:        base64.StdEncoding.EncodeToString(results[i].Data),
			Title:       results[i].Title,
			Description: results[i].Description,
			AlbumID:     album.ID,
			Objects:     results[i].Objects,
		})
		if err != nil {
			return fmt.Errorf("画像の取り込みに失敗したのだ: %w", err)
		}

		results[i].ImageURL = uploaded.URL
		ingested++
	}

	acknowledgement := ""
	if plan != nil {
		acknowledgement = plan.Acknowledgement
	}
	history := append(album.ChatHistory,
		domain.ChatMessage{
			Role:      "user",
			Text:      cfg.Options.Prompt,
			ImageURLs: cfg.Options.SourceURLs,
			CreatedAt: time.Now(),
		},
		domain.ChatMessage{
			Role:                "model",
			Text:                acknowledgement,
			Variations:          results,
			FollowUpSuggestions: followUps,
			CreatedAt:           time.Now(),
		},
	)

	if _, err := client.Update(ctx, album.ID, domain.AlbumUpdate{
		ChatHistory: &history,
	}); err != nil {
		return fmt.Errorf("アルバムの更新に失敗したのだ: %w", err)
	}

	slog.Info("アルバムへ結果を追記したのだ", "album", album.ID, "images", ingested)
	return nil
}
