package pipeline

import (
	"context"
	"fmt"

	"github.com/shouni/go-reve-kit/internal/config"
	pkgconfig "github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/workflow"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は各コマンドが共有する初期化済みコンポーネントの束なのだ。
type AppContext struct {
	Manager *workflow.Manager
	Reader  remoteio.InputReader
	Writer  remoteio.OutputWriter
}

// newRemoteIO は GCS/ローカル両対応の Reader / Writer を作成するのだ。
func newRemoteIO(ctx context.Context) (remoteio.InputReader, remoteio.OutputWriter, error) {
	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, nil, err
	}
	return reader, writer, nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、
// アプリケーションコンテキストを初期化して返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	reader, writer, err := newRemoteIO(ctx)
	if err != nil {
		return nil, err
	}

	kitCfg := pkgconfig.NewConfig(cfg.GeminiAPIKey)
	kitCfg.GeminiModel = cfg.GeminiModel
	kitCfg.ImageModel = cfg.GeminiImageModel
	kitCfg.ServiceURL = cfg.ServiceURL
	kitCfg.RateInterval = config.DefaultRateLimit
	if cfg.Options.AIModel != "" {
		kitCfg.GeminiModel = cfg.Options.AIModel
	}
	if cfg.Options.ImageModel != "" {
		kitCfg.ImageModel = cfg.Options.ImageModel
	}

	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:     kitCfg,
		HTTPClient: httpkit.New(config.DefaultHTTPTimeout),
		Reader:     reader,
		Writer:     writer,
		WorkDir:    cfg.Options.WorkDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow manager: %w", err)
	}

	return &AppContext{
		Manager: manager,
		Reader:  reader,
		Writer:  writer,
	}, nil
}
