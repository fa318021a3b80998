// Package history は編集セッションの線形アンドゥ履歴を提供します。
// 分岐時にやり直しバッファを破棄する、標準的なアンドゥ・リドゥモデルなのだ。
package history

import (
	"fmt"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// Snapshot は履歴の 1 エントリです。画像バリエーションと、その時点の
// オブジェクトの森・ボックス上書きを不変のスナップショットとして保持します。
type Snapshot struct {
	Variation domain.ImageVariation
	Forest    []*domain.DetectedObject
	Overrides map[string]domain.BoundingBox
}

// clone はスナップショットのディープコピーを返します。
// Push と JumpTo の両方で使い、保持中のエントリが外部から書き換えられる事故を防ぐのだ。
func (s Snapshot) clone() Snapshot {
	c := Snapshot{
		Variation: s.Variation,
		Forest:    domain.CloneForest(s.Forest),
	}
	if s.Overrides != nil {
		c.Overrides = make(map[string]domain.BoundingBox, len(s.Overrides))
		for k, v := range s.Overrides {
			c.Overrides[k] = v
		}
	}
	if s.Variation.Objects != nil {
		c.Variation.Objects = domain.CloneForest(s.Variation.Objects)
	}
	return c
}

// History は現在位置インデックス付きのスナップショット列です。
type History struct {
	entries []Snapshot
	current int
}

// New は空の履歴を作ります。現在位置は -1（エントリなし）なのだ。
func New() *History {
	return &History{current: -1}
}

// Len はエントリ数を返します。
func (h *History) Len() int { return len(h.entries) }

// Current は現在位置のインデックスを返します。空なら -1 です。
func (h *History) Current() int { return h.current }

// Push は新しいスナップショットを追加します。現在位置が末尾でない場合、
// それより後ろのエントリは先に破棄されます（分岐でリドゥが消えるルール）。
func (h *History) Push(s Snapshot) {
	h.entries = h.entries[:h.current+1]
	h.entries = append(h.entries, s.clone())
	h.current = len(h.entries) - 1
}

// JumpTo は指定インデックスへ移動し、そのスナップショットの完全なコピーを返します。
// 部分的なマージは行わず、記録された状態をそのまま復元するのだ。
func (h *History) JumpTo(i int) (Snapshot, error) {
	if i < 0 || i >= len(h.entries) {
		return Snapshot{}, fmt.Errorf("履歴インデックス %d は範囲外です (0..%d)", i, len(h.entries)-1)
	}
	h.current = i
	return h.entries[i].clone(), nil
}

// Head は現在位置のスナップショットのコピーを返します。
func (h *History) Head() (Snapshot, error) {
	return h.JumpTo(h.current)
}
