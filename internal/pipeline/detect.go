package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/pkg/objects"
)

// ExecuteDetect は指定された画像を解析し、オブジェクトの森を JSON で保存するのだ。
func ExecuteDetect(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	rc, err := appCtx.Reader.Open(ctx, cfg.Options.ImageFile)
	if err != nil {
		return fmt.Errorf("画像 '%s' の読み込みに失敗したのだ: %w", cfg.Options.ImageFile, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("画像 '%s' の読み込みに失敗したのだ: %w", cfg.Options.ImageFile, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(cfg.Options.ImageFile))
	if mimeType == "" {
		mimeType = "image/png"
	}

	detectRunner, err := appCtx.Manager.BuildDetectRunner()
	if err != nil {
		return fmt.Errorf("DetectRunnerの構築に失敗したのだ: %w", err)
	}

	forest, err := detectRunner.Run(ctx, data, mimeType)
	if err != nil {
		return fmt.Errorf("物体検出に失敗したのだ: %w", err)
	}

	encoded, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return fmt.Errorf("検出結果のシリアライズに失敗したのだ: %w", err)
	}

	outputPath := cfg.Options.ObjectsFile
	if err := appCtx.Writer.Write(ctx, outputPath, bytes.NewReader(encoded), "application/json"); err != nil {
		return fmt.Errorf("検出結果の保存に失敗したのだ: %w", err)
	}

	slog.Info("物体検出が完了したのだ！",
		"roots", len(forest),
		"objects", objects.CountObjects(forest),
		"output", outputPath)
	return nil
}
