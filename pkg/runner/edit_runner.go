package runner

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/generator"
	"github.com/shouni/go-reve-kit/pkg/prompts"
	"golang.org/x/sync/errgroup"
)

// ImageEditRunner は、マスク制約つき編集と再配置編集を管理します。
// 同じ編集リクエストを複数並列で発行し、最初に成功した候補を採用することで
// 画像編集の揺らぎによる失敗を吸収するのだ。
type ImageEditRunner struct {
	cfg      config.Config
	composer *generator.StudioComposer
	builder  *prompts.EditBuilder
	vision   VisionModel
	reader   remoteio.InputReader
	writer   remoteio.OutputWriter
	workDir  string
}

// NewImageEditRunner は依存関係を注入して初期化します。
func NewImageEditRunner(
	cfg config.Config,
	composer *generator.StudioComposer,
	eb *prompts.EditBuilder,
	vision VisionModel,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	workDir string,
) *ImageEditRunner {
	return &ImageEditRunner{
		cfg:      cfg,
		composer: composer,
		builder:  eb,
		vision:   vision,
		reader:   reader,
		writer:   writer,
		workDir:  workDir,
	}
}

// MaskEdit は、選択オブジェクトの領域だけを編集対象とするマスク制約つき編集なのだ。
// ソース画像と同サイズのマスク（対象領域が白）を生成して 2 枚目の参照として添付します。
func (er *ImageEditRunner) MaskEdit(ctx context.Context, sourceURL, instruction, label string, box domain.BoundingBox) (domain.ImageVariation, error) {
	img, err := er.loadImage(ctx, sourceURL)
	if err != nil {
		return domain.ImageVariation{}, err
	}

	bounds := img.Bounds()
	maskData, err := generator.RenderMask(bounds.Dx(), bounds.Dy(), []domain.BoundingBox{box})
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("マスクの生成に失敗しました: %w", err)
	}

	maskURL, err := er.storeWorkFile(ctx, asset.DefaultMaskFileName, maskData, "image/png")
	if err != nil {
		return domain.ImageVariation{}, err
	}

	uris, err := er.composer.PrepareAssets(ctx, []string{sourceURL, maskURL})
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("編集素材の準備に失敗しました: %w", err)
	}

	prompt := er.builder.BuildMaskEdit(instruction, label, box)
	return er.runCandidates(ctx, prompt, uris, instruction)
}

// RepositionEdit は、オブジェクトの移動編集を 2 段階で実行するのだ。
// まず説明図からマルチモーダルモデルに自然言語の移動指示文を作らせ、
// 次にその指示文で保存制約つきの画像編集を行います。
func (er *ImageEditRunner) RepositionEdit(ctx context.Context, sourceURL string, moves []generator.ObjectMove) (domain.ImageVariation, error) {
	img, err := er.loadImage(ctx, sourceURL)
	if err != nil {
		return domain.ImageVariation{}, err
	}

	diagram, err := generator.RenderMoveDiagram(img, moves)
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("説明図の描画に失敗しました: %w", err)
	}

	descs := make([]prompts.MoveDescription, 0, len(moves))
	for _, m := range moves {
		descs = append(descs, prompts.MoveDescription{
			Label:      m.Label,
			Direction:  prompts.DescribeDirection(m.From, m.To),
			ResizeHint: string(m.ResizeHint()),
		})
	}

	instruction, err := er.vision.GenerateVisionText(ctx, er.builder.BuildMoveInstruction(descs), []ImageInput{
		{Data: diagram, MimeType: "image/png"},
	})
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("移動指示文の生成に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "EditRunner: Derived move instruction", "instruction", instruction)

	uris, err := er.composer.PrepareAssets(ctx, []string{sourceURL})
	if err != nil {
		return domain.ImageVariation{}, fmt.Errorf("編集素材の準備に失敗しました: %w", err)
	}

	prompt := er.builder.BuildRepositionEdit(instruction)
	return er.runCandidates(ctx, prompt, uris, instruction)
}

// runCandidates は同一の編集リクエストを並列発行し、最初に成功した候補を返すのだ。
// 候補番号の小さい順に採用するため、結果は呼び出しごとに安定します。
func (er *ImageEditRunner) runCandidates(ctx context.Context, prompt string, fileURIs []string, description string) (domain.ImageVariation, error) {
	n := er.cfg.EditCandidates
	if n <= 0 {
		n = config.DefaultEditCandidates
	}

	results := make([]*imagedom.ImageResponse, n)
	failures := make([]error, n)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if err := er.composer.RateLimiter.Wait(egCtx); err != nil {
				failures[i] = err
				return nil
			}
			resp, err := er.composer.Engine.GenerateMangaPage(egCtx, imagedom.ImagePageRequest{
				Prompt:      prompt,
				FileAPIURIs: fileURIs,
			})
			switch {
			case err != nil:
				failures[i] = err
			case len(resp.Data) == 0:
				failures[i] = ErrNoImageData
			default:
				results[i] = resp
			}
			// 候補の失敗は他の候補を止めないため、エラーは返さないのだ
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.ImageVariation{}, err
	}

	for i, resp := range results {
		if resp == nil {
			continue
		}
		slog.InfoContext(ctx, "EditRunner: Selected edit candidate", "candidate", i+1, "of", n)
		return domain.ImageVariation{
			ID:          uuid.NewString(),
			Title:       "編集結果",
			Description: description,
			Data:        resp.Data,
			MimeType:    resp.MimeType,
			CreatedAt:   time.Now(),
		}, nil
	}

	var firstErr error
	for _, fe := range failures {
		if fe != nil {
			firstErr = fe
			break
		}
	}
	return domain.ImageVariation{}, fmt.Errorf("全 %d 件の編集候補が失敗しました: %w", n, firstErr)
}

// loadImage はソース画像を読み込んでデコードします。
func (er *ImageEditRunner) loadImage(ctx context.Context, sourceURL string) (image.Image, error) {
	rc, err := er.reader.Open(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("ソース画像の読み込みに失敗しました (%s): %w", sourceURL, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ソース画像の読み込みに失敗しました (%s): %w", sourceURL, err)
	}

	return generator.DecodeImage(data)
}

// storeWorkFile は作業用ファイルを一意な名前で保存し、そのパスを返すのだ。
func (er *ImageEditRunner) storeWorkFile(ctx context.Context, baseName string, data []byte, mime string) (string, error) {
	unique := fmt.Sprintf("%s_%s", uuid.NewString()[:8], baseName)
	path, err := asset.ResolveOutputPath(er.workDir, unique)
	if err != nil {
		return "", fmt.Errorf("作業ファイルのパス解決に失敗しました: %w", err)
	}
	if err := er.writer.Write(ctx, path, bytes.NewReader(data), mime); err != nil {
		return "", fmt.Errorf("作業ファイルの保存に失敗しました (%s): %w", path, err)
	}
	return path, nil
}
