package objects

import (
	"fmt"
	"sort"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// BuildForest は検出モデルが返したフラットなオブジェクト列から親子の森を再構築するのだ。
// モデルの応答は揺らぐため、次のルールで正規化します。
//   - 親参照が無い、存在しないIDを指す、または自分自身を指すものはルートになる
//   - 同じIDがルートと子の両方として列挙された場合は子が勝つ
//   - 親参照が循環している場合は、循環内でIDが辞書順最小のものをルートに昇格させる
//
// 入力の全オブジェクトは出力の森にちょうど1回ずつ現れます。
func BuildForest(raws []domain.RawDetectedObject) []*domain.DetectedObject {
	nodes := make(map[string]*node, len(raws))
	var ids []string // 入力順を保つためのIDリスト

	for i, raw := range raws {
		id := raw.ID
		if id == "" {
			id = fmt.Sprintf("obj-%d", i+1)
		}

		if existing, ok := nodes[id]; ok {
			// 重複エントリ。親参照を持つ側を優先するのだ（子が勝つルール）。
			if existing.parent == "" && raw.ParentID != "" {
				existing.parent = raw.ParentID
			}
			continue
		}

		nodes[id] = &node{
			obj: &domain.DetectedObject{
				ID:    id,
				Label: raw.Label,
				Box:   raw.BoundingBox(),
			},
			parent: raw.ParentID,
		}
		ids = append(ids, id)
	}

	// 不正な親参照（未知のID・自己参照）をルート扱いに落とすのだ
	for _, id := range ids {
		n := nodes[id]
		if n.parent == "" {
			continue
		}
		if n.parent == id {
			n.parent = ""
			continue
		}
		if _, ok := nodes[n.parent]; !ok {
			n.parent = ""
		}
	}

	breakCycles(nodes, ids)

	// 入力順を保って親子を接続するのだ
	var roots []*domain.DetectedObject
	for _, id := range ids {
		n := nodes[id]
		if n.parent == "" {
			roots = append(roots, n.obj)
			continue
		}
		p := nodes[n.parent]
		p.obj.Children = append(p.obj.Children, n.obj)
	}

	return roots
}

// breakCycles は親参照の循環を検出し、循環メンバーのうちIDが辞書順最小の
// ノードの親参照を切ってルートへ昇格させます。木であって、グラフではないのだ。
func breakCycles(nodes map[string]*node, ids []string) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))

	for _, start := range ids {
		if state[start] != unvisited {
			continue
		}

		var stack []string
		cur := start
		for cur != "" && state[cur] == unvisited {
			state[cur] = inStack
			stack = append(stack, cur)
			cur = nodes[cur].parent
		}

		if cur != "" && state[cur] == inStack {
			// stack の cur 以降が循環メンバーなのだ
			idx := 0
			for i, id := range stack {
				if id == cur {
					idx = i
					break
				}
			}
			cycle := stack[idx:]
			sorted := append([]string(nil), cycle...)
			sort.Strings(sorted)
			nodes[sorted[0]].parent = ""
		}

		for _, id := range stack {
			state[id] = done
		}
	}
}

// node は BuildForest / breakCycles が共有する内部表現です。
type node struct {
	obj    *domain.DetectedObject
	parent string
}

// Flatten は森を行きがけ順で一次元のリストに平坦化します。
func Flatten(forest []*domain.DetectedObject) []*domain.DetectedObject {
	var flat []*domain.DetectedObject
	var walk func(o *domain.DetectedObject)
	walk = func(o *domain.DetectedObject) {
		flat = append(flat, o)
		for _, child := range o.Children {
			walk(child)
		}
	}
	for _, root := range forest {
		walk(root)
	}
	return flat
}

// CountObjects は森に含まれるオブジェクトの総数を返します。
func CountObjects(forest []*domain.DetectedObject) int {
	return len(Flatten(forest))
}

// FindByID は森からIDが一致するオブジェクトを探します。見つからなければ nil なのだ。
func FindByID(forest []*domain.DetectedObject, id string) *domain.DetectedObject {
	for _, o := range Flatten(forest) {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Rename は対象IDのオブジェクトのラベルを書き換えます。再帰的に探索し、
// 書き換えが起きた場合に true を返します。
func Rename(forest []*domain.DetectedObject, id, label string) bool {
	if o := FindByID(forest, id); o != nil {
		o.Label = label
		return true
	}
	return false
}
