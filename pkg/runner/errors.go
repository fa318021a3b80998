package runner

import (
	"context"
	"errors"
	"strings"
)

// ErrNoImageData は、画像生成の応答に画像バイト列が含まれていなかったことを示します。
var ErrNoImageData = errors.New("応答に画像データが含まれていませんでした")

// FailureMessage は、バリエーション生成・編集の失敗を利用者向けの文言に変換するのだ。
// リトライペイロードと一緒にチャット履歴へ残す文字列なので、内部エラーの詳細は含めません。
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "生成がタイムアウトしました。時間をおいて再試行してください。"
	case errors.Is(err, context.Canceled):
		return "生成がキャンセルされました。"
	case errors.Is(err, ErrNoImageData):
		return "モデルが画像を返しませんでした。プロンプトを変えて再試行してください。"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "safety") || strings.Contains(msg, "blocked"):
		return "安全性の制約により生成がブロックされました。指示内容を見直してください。"
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return "API の利用上限に達しました。しばらく待ってから再試行してください。"
	default:
		return "画像の生成に失敗しました。再試行できます。"
	}
}
