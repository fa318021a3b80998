package objects

import "github.com/shouni/go-reve-kit/pkg/domain"

// Layout はコンテナへレターボックス表示された画像の配置情報です。
// アスペクト比を保ったままコンテナに内接させ、余白は中央寄せで均等に配ります。
type Layout struct {
	Scale   float64 // 画像ピクセル -> 表示ピクセルの倍率
	OffsetX float64 // 表示領域左端から画像左端までの余白
	OffsetY float64 // 表示領域上端から画像上端までの余白
	ImageW  float64 // 元画像の幅（ピクセル）
	ImageH  float64 // 元画像の高さ（ピクセル）
}

// FitImage は画像（iw×ih）をコンテナ（cw×ch）に内接させるレイアウトを計算します。
func FitImage(iw, ih, cw, ch float64) Layout {
	if iw <= 0 || ih <= 0 || cw <= 0 || ch <= 0 {
		return Layout{Scale: 1, ImageW: iw, ImageH: ih}
	}

	scale := cw / iw
	if s := ch / ih; s < scale {
		scale = s
	}

	return Layout{
		Scale:   scale,
		OffsetX: (cw - iw*scale) / 2,
		OffsetY: (ch - ih*scale) / 2,
		ImageW:  iw,
		ImageH:  ih,
	}
}

// PixelRect は表示ピクセル座標での矩形です。
type PixelRect struct {
	X, Y, W, H float64
}

// ToPixels は正規化ボックス（0〜1000、画像基準）を表示ピクセル座標へ写像します。
func (l Layout) ToPixels(b domain.BoundingBox) PixelRect {
	px := b.XMin / domain.BoxScale * l.ImageW * l.Scale
	py := b.YMin / domain.BoxScale * l.ImageH * l.Scale
	return PixelRect{
		X: l.OffsetX + px,
		Y: l.OffsetY + py,
		W: b.Width() / domain.BoxScale * l.ImageW * l.Scale,
		H: b.Height() / domain.BoxScale * l.ImageH * l.Scale,
	}
}

// ToNormalized は表示ピクセル座標の矩形を正規化ボックスへ逆写像します。
// 結果はクランプされるため、コンテナ外へのドラッグも不変条件を壊さないのだ。
func (l Layout) ToNormalized(r PixelRect) domain.BoundingBox {
	if l.Scale == 0 || l.ImageW == 0 || l.ImageH == 0 {
		return domain.BoundingBox{}
	}
	return domain.BoundingBox{
		XMin: (r.X - l.OffsetX) / l.Scale / l.ImageW * domain.BoxScale,
		YMin: (r.Y - l.OffsetY) / l.Scale / l.ImageH * domain.BoxScale,
		XMax: (r.X + r.W - l.OffsetX) / l.Scale / l.ImageW * domain.BoxScale,
		YMax: (r.Y + r.H - l.OffsetY) / l.Scale / l.ImageH * domain.BoxScale,
	}.Clamp()
}
