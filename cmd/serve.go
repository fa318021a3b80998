package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// serveCmd は、アルバム永続化サービス（REST API）を起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "アルバム永続化サービスを起動するのだ。",
	Long: `アルバムの CRUD と画像のアップロード・配信を提供する HTTP サービスを
起動するのだ。台帳は JSON ドキュメント、画像はアップロードディレクトリに
保存されるのだよ。`,
	RunE: serveCommand,
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("アルバム永続化サービスを起動するのだ！",
		"host", opts.Host,
		"data_dir", opts.DataDir,
		"uploads_dir", opts.UploadsDir)

	if err := pipeline.ExecuteServe(ctx, cfg); err != nil {
		return fmt.Errorf("サービスの実行中にエラーが発生したのだ: %w", err)
	}
	return nil
}
