package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// detectCmd は、画像の階層つき物体検出のみを実行するのだ。
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "画像を解析してオブジェクトの森（JSON）を出力するのだ。",
	Long: `指定された画像を解析し、検出されたオブジェクトを親子関係つきの
ツリー構造（JSON）として保存するのだ。画像の編集は行わないのだよ。`,
	RunE: detectCommand,
}

func detectCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.ImageFile == "" {
		return fmt.Errorf("解析する画像（--image）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("物体検出モードを起動するのだ！",
		"image", opts.ImageFile,
		"output", opts.ObjectsFile)

	if err := pipeline.ExecuteDetect(ctx, cfg); err != nil {
		return fmt.Errorf("物体検出中にエラーが発生したのだ: %w", err)
	}
	return nil
}
