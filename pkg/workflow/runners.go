package workflow

import (
	"fmt"

	"github.com/shouni/go-reve-kit/pkg/prompts"
	"github.com/shouni/go-reve-kit/pkg/publisher"
	"github.com/shouni/go-reve-kit/pkg/runner"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-text-format/pkg/builder"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
)

// BuildPlanRunner は、構成プラン生成を担当する Runner を作成します。
func (m *Manager) BuildPlanRunner() (PlanRunner, error) {
	extractor, err := extract.NewExtractor(m.httpClient)
	if err != nil {
		return nil, fmt.Errorf("extractor の初期化に失敗しました: %w", err)
	}

	return runner.NewGenerationPlanRunner(m.cfg, extractor, prompts.NewPlanBuilder(), m.aiClient), nil
}

// BuildDetectRunner は、物体検出を担当する Runner を作成します。
func (m *Manager) BuildDetectRunner() (DetectRunner, error) {
	return runner.NewObjectDetectRunner(m.cfg, prompts.NewDetectBuilder(), m.vision), nil
}

// BuildVariationRunner は、バリエーション画像生成を担当する Runner を作成します。
func (m *Manager) BuildVariationRunner() (VariationRunner, error) {
	return runner.NewVariationImageRunner(m.cfg, m.composer), nil
}

// BuildEditRunner は、マスク編集・再配置編集を担当する Runner を作成します。
func (m *Manager) BuildEditRunner() (EditRunner, error) {
	return runner.NewImageEditRunner(m.cfg, m.composer, prompts.NewEditBuilder(), m.vision, m.reader, m.writer, m.workDir), nil
}

// BuildPublishRunner は、アルバムのギャラリー書き出しを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	return NewPublishRunner(m.reader, m.writer)
}

// NewPublishRunner は Manager を経由せずに PublishRunner を組み立てるのだ。
// 書き出しは AI クライアントを必要としないため、API キーなしの実行経路からも使えます。
func NewPublishRunner(reader remoteio.InputReader, writer remoteio.OutputWriter) (PublishRunner, error) {
	htmlCfg := builder.BuilderConfig{
		EnableHardWraps: true,
		Mode:            "simple",
	}
	md2htmlBuilder, err := builder.NewBuilder(htmlCfg)
	if err != nil {
		return nil, fmt.Errorf("md2htmlBuilder の初期化に失敗しました: %w", err)
	}
	md2htmlRunner, err := md2htmlBuilder.BuildRunner()
	if err != nil {
		return nil, fmt.Errorf("md2htmlRunner の初期化に失敗しました: %w", err)
	}

	return publisher.NewGalleryPublisher(reader, writer, md2htmlRunner), nil
}
