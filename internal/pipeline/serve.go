package pipeline

import (
	"context"
	"fmt"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/server"
	"github.com/shouni/go-reve-kit/pkg/albums"
)

// ExecuteServe はアルバム永続化サービスを起動するのだ。
// AI クライアントは不要なので、ストレージの初期化だけで立ち上がります。
func ExecuteServe(ctx context.Context, cfg *config.Config) error {
	reader, writer, err := newRemoteIO(ctx)
	if err != nil {
		return err
	}

	store, err := albums.NewStore(ctx, reader, writer, cfg.Options.DataDir, cfg.Options.UploadsDir)
	if err != nil {
		return fmt.Errorf("アルバム台帳の初期化に失敗したのだ: %w", err)
	}

	return server.Run(ctx, server.Config{
		Host:  cfg.Options.Host,
		Store: store,
	})
}
