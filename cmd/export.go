package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// exportCmd は、アルバムをギャラリー（Markdown + HTML）として書き出すのだ。
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "アルバムをギャラリー（Markdown + HTML）として書き出すのだ。",
	Long: `アルバム永続化サービスからアルバムを取得し、ギャラリー画像と
Markdown / HTML を出力ディレクトリへ書き出すのだ。AI は使わないのだよ。`,
	RunE: exportCommand,
}

func exportCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.AlbumID == "" {
		return fmt.Errorf("書き出すアルバム（--album）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("ギャラリー書き出しモードを起動するのだ！",
		"album", opts.AlbumID,
		"output", opts.OutputDir)

	if err := pipeline.ExecuteExport(ctx, cfg); err != nil {
		return fmt.Errorf("書き出し中にエラーが発生したのだ: %w", err)
	}
	return nil
}
