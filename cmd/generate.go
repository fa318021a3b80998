package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-reve-kit/internal/config"
	"github.com/shouni/go-reve-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、指示文から 3 案のバリエーション画像を生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "指示文から画像バリエーションを生成するのだ。",
	Long: `指示文（と任意のソース画像・参考URL）から構成プランを立て、
3案のバリエーション画像を順番に生成して保存するのだ。
--album を指定すると、結果をアルバム永続化サービスへ追記するのだよ。
--retry にバリエーションIDを渡すと、アルバムに記録されたリトライ情報で
失敗した案だけを同じ入力でやり直すのだ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.RetryID != "" {
		if opts.AlbumID == "" {
			return fmt.Errorf("リトライにはアルバム（--album）の指定が必要なのだ")
		}

		cfg := config.LoadConfig()
		cfg.Options = opts

		slog.Info("リトライモードを起動するのだ！", "variation", opts.RetryID, "album", opts.AlbumID)

		if err := pipeline.ExecuteRetry(ctx, cfg); err != nil {
			return fmt.Errorf("リトライ中にエラーが発生したのだ: %w", err)
		}
		return nil
	}

	if opts.Prompt == "" {
		return fmt.Errorf("指示文（--prompt）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("生成パイプラインを起動するのだ！",
		"prompt", opts.Prompt,
		"sources", len(opts.SourceURLs),
		"output", opts.OutputDir)

	if err := pipeline.ExecuteGenerate(ctx, cfg); err != nil {
		return fmt.Errorf("生成中にエラーが発生したのだ: %w", err)
	}

	slog.Info("生成が完了したのだ！", "output_dir", opts.OutputDir)
	return nil
}
