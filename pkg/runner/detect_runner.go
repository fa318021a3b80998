package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/objects"
	"github.com/shouni/go-reve-kit/pkg/prompts"
)

// ObjectDetectRunner は、生成画像に対する階層つき物体検出を管理します。
type ObjectDetectRunner struct {
	cfg     config.Config
	builder *prompts.DetectBuilder
	vision  VisionModel
}

// NewObjectDetectRunner は依存関係を注入して初期化します。
func NewObjectDetectRunner(cfg config.Config, db *prompts.DetectBuilder, vision VisionModel) *ObjectDetectRunner {
	return &ObjectDetectRunner{
		cfg:     cfg,
		builder: db,
		vision:  vision,
	}
}

// Run は画像を解析し、親子関係の解決まで済ませたオブジェクトの森を返すのだ。
func (dr *ObjectDetectRunner) Run(ctx context.Context, imageData []byte, mimeType string) ([]*domain.DetectedObject, error) {
	slog.InfoContext(ctx, "DetectRunner: Calling Gemini API", "model", dr.cfg.GeminiModel)

	raw, err := dr.vision.GenerateVisionText(ctx, dr.builder.Build(), []ImageInput{
		{Data: imageData, MimeType: mimeType},
	})
	if err != nil {
		return nil, fmt.Errorf("物体検出の呼び出しに失敗しました: %w", err)
	}

	raws, err := parseDetections(raw)
	if err != nil {
		return nil, err
	}

	forest := objects.BuildForest(raws)
	slog.InfoContext(ctx, "DetectRunner: Built object forest",
		"objects", len(raws), "roots", len(forest))
	return forest, nil
}

// parseDetections は AI 応答から検出オブジェクトの配列を取り出すのだ。
func parseDetections(raw string) ([]domain.RawDetectedObject, error) {
	rawJSON := extractJSON(raw, "[", "]")

	var raws []domain.RawDetectedObject
	if err := json.Unmarshal([]byte(rawJSON), &raws); err != nil {
		return nil, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	return raws, nil
}
