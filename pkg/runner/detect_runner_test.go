package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/prompts"
)

// fakeVision は VisionModel のテスト用実装です。
type fakeVision struct {
	response string
	err      error

	lastPrompt string
	lastImages []ImageInput
}

func (fv *fakeVision) GenerateVisionText(_ context.Context, prompt string, images []ImageInput) (string, error) {
	fv.lastPrompt = prompt
	fv.lastImages = images
	return fv.response, fv.err
}

func TestObjectDetectRunner_Run(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("応答から親子関係つきの森が組み立てられるのだ", func(t *testing.T) {
		fv := &fakeVision{response: "```json\n" + `[
			{"id": "car", "label": "car", "box_2d": [100, 100, 900, 900]},
			{"id": "wheel", "label": "front wheel", "box_2d": [700, 150, 900, 350], "parent_id": "car"}
		]` + "\n```"}

		dr := NewObjectDetectRunner(cfg, prompts.NewDetectBuilder(), fv)
		forest, err := dr.Run(context.Background(), []byte{0x89}, "image/png")
		if err != nil {
			t.Fatalf("検出に失敗したのだ: %v", err)
		}

		if len(forest) != 1 {
			t.Fatalf("ルート数が違うのだ: %d", len(forest))
		}
		if forest[0].ID != "car" || len(forest[0].Children) != 1 {
			t.Errorf("親子関係が解決されていないのだ: %+v", forest[0])
		}
		if len(fv.lastImages) != 1 || fv.lastImages[0].MimeType != "image/png" {
			t.Errorf("画像が添付されていないのだ: %+v", fv.lastImages)
		}
	})

	t.Run("JSONでない応答はエラーになるのだ", func(t *testing.T) {
		fv := &fakeVision{response: "検出できるオブジェクトがありませんでした。"}
		dr := NewObjectDetectRunner(cfg, prompts.NewDetectBuilder(), fv)
		if _, err := dr.Run(context.Background(), []byte{0x89}, "image/png"); err == nil {
			t.Error("エラーが発生しなかったのだ")
		}
	})

	t.Run("呼び出し失敗はラップして返すのだ", func(t *testing.T) {
		fv := &fakeVision{err: errors.New("boom")}
		dr := NewObjectDetectRunner(cfg, prompts.NewDetectBuilder(), fv)
		if _, err := dr.Run(context.Background(), []byte{0x89}, "image/png"); err == nil {
			t.Error("エラーが発生しなかったのだ")
		}
	})
}
