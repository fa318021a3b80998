package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/objects"
)

const editedFileName = "edited.png"

// ExecuteEdit は、画像を解析してラベル指定のオブジェクトを選択し、
// マスク制約つき編集または移動編集を 1 回適用して結果を保存するのだ。
func ExecuteEdit(ctx context.Context, cfg *config.Config) error {
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

	session, err := appCtx.Manager.NewEditSession()
	if err != nil {
		return fmt.Errorf("編集セッションの構築に失敗したのだ: %w", err)
	}

	if err := session.Open(ctx, domain.ImageVariation{
		ImageURL: cfg.Options.ImageFile,
		Data:     data,
		MimeType: mimeType,
	}); err != nil {
		return err
	}
	slog.Info("オブジェクトを検出したのだ！",
		"roots", len(session.Objects()),
		"objects", objects.CountObjects(session.Objects()))

	id, err := session.SelectByLabel(cfg.Options.ObjectLabel)
	if err != nil {
		return err
	}

	var edited domain.ImageVariation
	if cfg.Options.MoveTo != "" {
		target := objects.FindByID(session.Objects(), id)
		to, err := moveTargetBox(target.Box, cfg.Options.MoveTo)
		if err != nil {
			return err
		}
		if err := session.MoveObject(id, to); err != nil {
			return err
		}
		edited, err = session.ApplyReposition(ctx)
		if err != nil {
			return err
		}
	} else {
		edited, err = session.ApplyMaskEdit(ctx, cfg.Options.Instruction)
		if err != nil {
			return err
		}
	}

	outputPath, err := asset.ResolveOutputPath(cfg.Options.OutputDir, editedFileName)
	if err != nil {
		return fmt.Errorf("保存先のパス解決に失敗したのだ: %w", err)
	}
	if err := appCtx.Writer.Write(ctx, outputPath, bytes.NewReader(edited.Data), edited.MimeType); err != nil {
		return fmt.Errorf("編集結果の保存に失敗したのだ: %w", err)
	}

	slog.Info("画像編集が完了したのだ！", "object", cfg.Options.ObjectLabel, "output", outputPath)
	return nil
}

// moveTargetBox は "x,y" 形式の移動先中心座標を読み取り、
// 元のボックスと同じ大きさの移動先ボックスを組み立てるのだ。
func moveTargetBox(from domain.BoundingBox, moveTo string) (domain.BoundingBox, error) {
	parts := strings.Split(moveTo, ",")
	if len(parts) != 2 {
		return domain.BoundingBox{}, fmt.Errorf("--move-to は \"x,y\" 形式で指定してほしいのだ: %q", moveTo)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return domain.BoundingBox{}, fmt.Errorf("--move-to の座標を解釈できないのだ: %q", moveTo)
	}

	cx, cy := from.Center()
	return domain.BoundingBox{
		XMin: from.XMin + x - cx,
		YMin: from.YMin + y - cy,
		XMax: from.XMax + x - cx,
		YMax: from.YMax + y - cy,
	}.Clamp(), nil
}
