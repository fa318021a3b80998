package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-reve-kit/internal/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

var opts config.Options

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "生成物の保存先ディレクトリ（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.WorkDir, "work-dir", config.DefaultWorkDir, "マスク等の作業ファイルの置き場なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "テキスト生成に使う Gemini モデル名なのだ（未指定なら環境変数）。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ（未指定なら環境変数）。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")

	// --- アルバム永続化サービス関連 ---
	rootCmd.PersistentFlags().StringVar(&opts.AlbumID, "album", "", "結果を追記するアルバムIDなのだ。")

	// --- 生成コマンド固有 ---
	generateCmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "画像生成の指示文なのだ。")
	generateCmd.Flags().StringSliceVarP(&opts.SourceURLs, "source", "s", nil, "編集・参照するソース画像（複数指定可）なのだ。")
	generateCmd.Flags().StringVar(&opts.ContextURL, "context-url", "", "参考情報を抽出するWebページのURLなのだ。")
	generateCmd.Flags().StringVar(&opts.RetryID, "retry", "", "再生成するバリエーションのIDなのだ（--album と併用）。")

	// --- 検出コマンド固有 ---
	detectCmd.Flags().StringVarP(&opts.ImageFile, "image", "i", "", "解析する画像のパスなのだ。")
	detectCmd.Flags().StringVar(&opts.ObjectsFile, "objects-file", config.DefaultObjectsFile, "検出結果（JSON）の保存先なのだ。")

	// --- 編集コマンド固有 ---
	editCmd.Flags().StringVarP(&opts.ImageFile, "image", "i", "", "編集する画像のパスなのだ。")
	editCmd.Flags().StringVar(&opts.ObjectLabel, "object", "", "編集対象オブジェクトのラベルなのだ。")
	editCmd.Flags().StringVar(&opts.Instruction, "instruction", "", "マスク編集の指示文なのだ。")
	editCmd.Flags().StringVar(&opts.MoveTo, "move-to", "", "移動先の中心座標 \"x,y\"（0-1000グリッド）なのだ。")

	// --- サービスコマンド固有 ---
	serveCmd.Flags().StringVar(&opts.Host, "host", config.DefaultServiceHost, "サービスの待ち受けアドレスなのだ。")
	serveCmd.Flags().StringVar(&opts.DataDir, "data-dir", config.DefaultDataDir, "アルバム台帳の置き場なのだ。")
	serveCmd.Flags().StringVar(&opts.UploadsDir, "uploads-dir", config.DefaultUploadsDir, "アップロード画像の置き場なのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
// serve と export は AI を使わないので API キーなしでも動かせるのだよ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "serve", "export":
		return nil
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"reve",
		addAppFlags,
		preRunAppE,
		generateCmd,
		detectCmd,
		editCmd,
		serveCmd,
		exportCmd,
	)
}
