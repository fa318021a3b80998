package generator

import "github.com/shouni/go-reve-kit/pkg/domain"

// ResizeHint は移動編集の際に画像モデルへ伝えるリサイズ指示です。
type ResizeHint string

const (
	// ResizeLarger は対象を手前に引き寄せて大きく描く指示です。
	ResizeLarger ResizeHint = "make it appear closer and larger"
	// ResizeSmaller は対象を奥へ遠ざけて小さく描く指示です。
	ResizeSmaller ResizeHint = "make it appear farther away and smaller"
	// ResizeNone はサイズを変えない指示です。
	ResizeNone ResizeHint = "do not resize"
)

// 面積比の判定しきい値。ドラッグ操作の微妙な揺れをリサイズ意図と
// 誤認しないための固定値なのだ。
const (
	growThreshold   = 1.2
	shrinkThreshold = 0.8
)

// ClassifyResize は編集前後のボックス面積比から、移動なのかリサイズなのかを判定します。
// 比が 1.2 を超えたら拡大、0.8 未満なら縮小、その間はリサイズなしと扱います。
func ClassifyResize(before, after domain.BoundingBox) ResizeHint {
	beforeArea := before.Area()
	if beforeArea <= 0 {
		return ResizeNone
	}

	ratio := after.Area() / beforeArea
	switch {
	case ratio > growThreshold:
		return ResizeLarger
	case ratio < shrinkThreshold:
		return ResizeSmaller
	default:
		return ResizeNone
	}
}
