package generator

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg" // ソース画像のデコード用
	_ "image/png"

	"github.com/fogleman/gg"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// ObjectMove は 1 オブジェクトの移動指示（正規化座標での移動前後）です。
type ObjectMove struct {
	ID    string
	Label string
	From  domain.BoundingBox
	To    domain.BoundingBox
}

// ResizeHint は移動前後の面積比から求めたリサイズ判定を返します。
func (m ObjectMove) ResizeHint() ResizeHint {
	return ClassifyResize(m.From, m.To)
}

// DecodeImage は PNG / JPEG のバイト列をデコードします。
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	return img, nil
}

// RenderMoveDiagram は移動編集の意図をモデルへ伝えるための説明図を描画するのだ。
// ソース画像の上に、移動前のボックスを赤、移動後のボックスを緑で重ね、
// 中心同士を結ぶ矢印で方向を示します。戻り値は PNG バイト列です。
func RenderMoveDiagram(src image.Image, moves []ObjectMove) ([]byte, error) {
	if len(moves) == 0 {
		return nil, fmt.Errorf("移動指示が空です")
	}

	bounds := src.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(src, 0, 0)

	// 元画像をわずかに暗くして、注釈を読み取りやすくするのだ
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	lineWidth := math.Max(2, w/300)

	for _, m := range moves {
		from := toPixelRect(m.From, w, h)
		to := toPixelRect(m.To, w, h)

		// 移動前: 赤の破線風、移動後: 緑の実線
		dc.SetRGBA(0.9, 0.2, 0.2, 0.95)
		dc.SetLineWidth(lineWidth)
		dc.DrawRectangle(from.X, from.Y, from.W, from.H)
		dc.Stroke()

		dc.SetRGBA(0.2, 0.85, 0.3, 0.95)
		dc.SetLineWidth(lineWidth)
		dc.DrawRectangle(to.X, to.Y, to.W, to.H)
		dc.Stroke()

		drawArrow(dc,
			from.X+from.W/2, from.Y+from.H/2,
			to.X+to.W/2, to.Y+to.H/2,
			lineWidth)

		// ラベルは移動後ボックスの左上に添えるのだ
		dc.SetRGBA(1, 1, 1, 1)
		dc.DrawString(m.Label, to.X+4, math.Max(12, to.Y-6))
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("説明図のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// toPixelRect は正規化ボックス（0〜1000）を画像ピクセル座標へ変換します。
func toPixelRect(b domain.BoundingBox, w, h float64) struct{ X, Y, W, H float64 } {
	return struct{ X, Y, W, H float64 }{
		X: b.XMin / domain.BoxScale * w,
		Y: b.YMin / domain.BoxScale * h,
		W: b.Width() / domain.BoxScale * w,
		H: b.Height() / domain.BoxScale * h,
	}
}

// drawArrow は方向インジケーター（軸線と矢じり）を描画します。
func drawArrow(dc *gg.Context, x0, y0, x1, y1, lineWidth float64) {
	dc.SetRGBA(1, 0.85, 0.2, 0.95)
	dc.SetLineWidth(lineWidth * 1.5)
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()

	angle := math.Atan2(y1-y0, x1-x0)
	headLen := math.Max(10, lineWidth*6)
	for _, spread := range []float64{math.Pi / 7, -math.Pi / 7} {
		dc.DrawLine(x1, y1,
			x1-headLen*math.Cos(angle-spread),
			y1-headLen*math.Sin(angle-spread))
	}
	dc.Stroke()
}
