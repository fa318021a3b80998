package objects

import (
	"fmt"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// Session は 1 枚の画像に対するオブジェクト編集セッションの状態なのだ。
// 検出された木は読み取り専用として扱い、ユーザーによる移動・リサイズは
// Overrides（ID別の上書きマップ）に記録します。ラベル変更だけは木を直接書き換えます。
type Session struct {
	Variation domain.ImageVariation
	Forest    []*domain.DetectedObject
	Overrides map[string]domain.BoundingBox
	selection map[string]struct{}
}

// NewSession は検出結果から新しい編集セッションを開始します。
func NewSession(v domain.ImageVariation, forest []*domain.DetectedObject) *Session {
	return &Session{
		Variation: v,
		Forest:    forest,
		Overrides: make(map[string]domain.BoundingBox),
		selection: make(map[string]struct{}),
	}
}

// Select は対象オブジェクトを選択状態にします。存在しないIDはエラーなのだ。
func (s *Session) Select(id string) error {
	if FindByID(s.Forest, id) == nil {
		return fmt.Errorf("オブジェクト %q が見つかりません", id)
	}
	s.selection[id] = struct{}{}
	return nil
}

// Deselect は選択を解除します。
func (s *Session) Deselect(id string) {
	delete(s.selection, id)
}

// ClearSelection は選択をすべて解除します。
func (s *Session) ClearSelection() {
	s.selection = make(map[string]struct{})
}

// Selected は選択中のオブジェクトを平坦化順で返します。
func (s *Session) Selected() []*domain.DetectedObject {
	var picked []*domain.DetectedObject
	for _, o := range Flatten(s.Forest) {
		if _, ok := s.selection[o.ID]; ok {
			picked = append(picked, o)
		}
	}
	return picked
}

// Rename は対象オブジェクトのラベルを書き換えます。
func (s *Session) Rename(id, label string) error {
	if !Rename(s.Forest, id, label) {
		return fmt.Errorf("オブジェクト %q が見つかりません", id)
	}
	return nil
}

// SetBox はユーザー編集後のボックスを上書きマップへ記録します。
// 値は必ずクランプされるため、どんな編集を経ても不変条件は保たれるのだ。
func (s *Session) SetBox(id string, box domain.BoundingBox) error {
	if FindByID(s.Forest, id) == nil {
		return fmt.Errorf("オブジェクト %q が見つかりません", id)
	}
	s.Overrides[id] = box.Clamp()
	return nil
}

// ResetBox は上書きを取り消し、検出時のボックスへ戻します。
func (s *Session) ResetBox(id string) {
	delete(s.Overrides, id)
}

// EffectiveBox は上書きがあればそれを、なければ検出時のボックスを返します。
func (s *Session) EffectiveBox(id string) (domain.BoundingBox, bool) {
	if box, ok := s.Overrides[id]; ok {
		return box, true
	}
	if o := FindByID(s.Forest, id); o != nil {
		return o.Box, true
	}
	return domain.BoundingBox{}, false
}

// CloneOverrides は上書きマップの防御的コピーを返します。履歴保存用なのだ。
func (s *Session) CloneOverrides() map[string]domain.BoundingBox {
	copied := make(map[string]domain.BoundingBox, len(s.Overrides))
	for k, v := range s.Overrides {
		copied[k] = v
	}
	return copied
}
