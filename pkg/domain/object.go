package domain

// BoxScale は正規化座標系の上限値です。検出モデルは 0〜1000 の整数スケールで
// バウンディングボックスを返すため、クライアント側も同じスケールで保持します。
const BoxScale = 1000.0

// BoundingBox は正規化座標系（0〜1000）での矩形領域を保持します。
// 各軸で Min <= Max が不変条件です。
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Clamp は座標を [0, BoxScale] に収め、軸ごとに Min <= Max となるよう
// 正規化した新しいボックスを返すのだ。ユーザー編集後の値は必ずこれを通すのだ。
func (b BoundingBox) Clamp() BoundingBox {
	c := BoundingBox{
		XMin: clampCoord(b.XMin),
		YMin: clampCoord(b.YMin),
		XMax: clampCoord(b.XMax),
		YMax: clampCoord(b.YMax),
	}
	if c.XMin > c.XMax {
		c.XMin, c.XMax = c.XMax, c.XMin
	}
	if c.YMin > c.YMax {
		c.YMin, c.YMax = c.YMax, c.YMin
	}
	return c
}

// Width はボックスの幅を返します。
func (b BoundingBox) Width() float64 { return b.XMax - b.XMin }

// Height はボックスの高さを返します。
func (b BoundingBox) Height() float64 { return b.YMax - b.YMin }

// Area はボックスの面積（正規化座標系）を返します。
func (b BoundingBox) Area() float64 { return b.Width() * b.Height() }

// Center はボックスの中心座標を返します。移動方向の算出に使います。
func (b BoundingBox) Center() (float64, float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// Intersect は 2 つのボックスの交差領域を返します。
// 交差しない場合は面積ゼロのボックスと false を返すのだ。
func (b BoundingBox) Intersect(other BoundingBox) (BoundingBox, bool) {
	i := BoundingBox{
		XMin: max(b.XMin, other.XMin),
		YMin: max(b.YMin, other.YMin),
		XMax: min(b.XMax, other.XMax),
		YMax: min(b.YMax, other.YMax),
	}
	if i.XMin >= i.XMax || i.YMin >= i.YMax {
		return BoundingBox{}, false
	}
	return i, true
}

func clampCoord(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > BoxScale {
		return BoxScale
	}
	return v
}

// DetectedObject は画像内で検出されたラベル付き領域です。
// Children は単一親の木構造であり、循環参照を持ちません。
type DetectedObject struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Box      BoundingBox       `json:"box"`
	Children []*DetectedObject `json:"children,omitempty"`
}

// Clone はオブジェクトと子孫全体のディープコピーを返します。
// 履歴スナップショットの不変性を守るために使うのだ。
func (o *DetectedObject) Clone() *DetectedObject {
	if o == nil {
		return nil
	}
	c := &DetectedObject{
		ID:    o.ID,
		Label: o.Label,
		Box:   o.Box,
	}
	if len(o.Children) > 0 {
		c.Children = make([]*DetectedObject, 0, len(o.Children))
		for _, child := range o.Children {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return c
}

// CloneForest はルート群全体のディープコピーを返します。
func CloneForest(forest []*DetectedObject) []*DetectedObject {
	if forest == nil {
		return nil
	}
	copied := make([]*DetectedObject, 0, len(forest))
	for _, root := range forest {
		copied = append(copied, root.Clone())
	}
	return copied
}

// RawDetectedObject は検出モデルが返すフラットなワイヤ形式です。
// box_2d は Gemini の慣例に合わせて [y_min, x_min, y_max, x_max] の順なのだ。
type RawDetectedObject struct {
	ID       string     `json:"id,omitempty"`
	Label    string     `json:"label"`
	Box2D    [4]float64 `json:"box_2d"`
	ParentID string     `json:"parent_id,omitempty"`
}

// BoundingBox はワイヤ形式の box_2d をクランプ済みの BoundingBox に変換します。
func (r RawDetectedObject) BoundingBox() BoundingBox {
	return BoundingBox{
		YMin: r.Box2D[0],
		XMin: r.Box2D[1],
		YMax: r.Box2D[2],
		XMax: r.Box2D[3],
	}.Clamp()
}
