package generator

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// RenderMask は、選択オブジェクトの領域を白、それ以外を黒で塗ったマスク PNG を作るのだ。
// 白い領域だけが編集可能であることをモデルに伝えるために添付します。
func RenderMask(width, height int, boxes []domain.BoundingBox) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("マスクのサイズが不正です: %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(1, 1, 1)
	for _, box := range boxes {
		r := toPixelRect(box, float64(width), float64(height))
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("マスク画像のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
