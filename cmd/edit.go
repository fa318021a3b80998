package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// editCmd は、検出されたオブジェクトを対象とした画像編集を実行するのだ。
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "オブジェクトを対象にマスク編集または移動編集を実行するのだ。",
	Long: `画像を解析してオブジェクトを検出し、ラベルで指定された対象に
マスク制約つき編集（--instruction）または移動編集（--move-to）を適用するのだ。
編集はマスク外の領域を保存したまま、対象の領域だけに働くのだよ。`,
	RunE: editCommand,
}

func editCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.ImageFile == "" {
		return fmt.Errorf("編集する画像（--image）を指定してほしいのだ")
	}
	if opts.ObjectLabel == "" {
		return fmt.Errorf("編集対象のオブジェクト（--object）を指定してほしいのだ")
	}
	if opts.Instruction == "" && opts.MoveTo == "" {
		return fmt.Errorf("編集内容（--instruction か --move-to）を指定してほしいのだ")
	}
	if opts.Instruction != "" && opts.MoveTo != "" {
		return fmt.Errorf("--instruction と --move-to は同時に指定できないのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("画像編集モードを起動するのだ！",
		"image", opts.ImageFile,
		"object", opts.ObjectLabel)

	if err := pipeline.ExecuteEdit(ctx, cfg); err != nil {
		return fmt.Errorf("画像編集中にエラーが発生したのだ: %w", err)
	}
	return nil
}
