package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/workflow"
)

// ExecuteExport はアルバムをサービスから取得し、ギャラリー（Markdown + HTML）として書き出すのだ。
// AI クライアントは不要なので API キーなしでも動きます。
func ExecuteExport(ctx context.Context, cfg *config.Config) error {
	reader, writer, err := newRemoteIO(ctx)
	if err != nil {
		return err
	}

	client := albums.NewClient(cfg.ServiceURL, config.DefaultHTTPTimeout)
	album, err := client.Get(ctx, cfg.Options.AlbumID)
	if err != nil {
		return fmt.Errorf("アルバムの取得に失敗したのだ: %w", err)
	}

	// サービス相対の画像URLはローカルへ取り寄せてから書き出すのだ
	for i := range album.GalleryImages {
		img := &album.GalleryImages[i]
		if img.ImageURL == "" {
			continue
		}

		data, err := client.FetchImage(ctx, img.ImageURL)
		if err != nil {
			return fmt.Errorf("画像の取得に失敗したのだ (%s): %w", img.ImageURL, err)
		}

		name := img.Filename
		if name == "" {
			name = fmt.Sprintf("gallery_%d.png", i+1)
		}
		staged, err := asset.ResolveOutputPath(cfg.Options.WorkDir, name)
		if err != nil {
			return fmt.Errorf("作業パスの解決に失敗したのだ: %w", err)
		}
		if err := writer.Write(ctx, staged, bytes.NewReader(data), stagedMime(name)); err != nil {
			return fmt.Errorf("画像の一時保存に失敗したのだ (%s): %w", staged, err)
		}
		img.ImageURL = staged
	}

	publishRunner, err := workflow.NewPublishRunner(reader, writer)
	if err != nil {
		return fmt.Errorf("PublishRunnerの構築に失敗したのだ: %w", err)
	}

	result, err := publishRunner.Run(ctx, album, cfg.Options.OutputDir)
	if err != nil {
		return fmt.Errorf("ギャラリーの書き出しに失敗したのだ: %w", err)
	}

	slog.Info("ギャラリーの書き出しが完了したのだ！",
		"markdown", result.MarkdownPath,
		"html", result.HTMLPath,
		"images", len(result.ImagePaths))
	return nil
}

func stagedMime(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
