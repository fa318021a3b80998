package generator

import (
	"testing"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// boxRect は幅 w、高さ h のボックスを作るヘルパーなのだ。
func boxRect(w, h float64) domain.BoundingBox {
	return domain.BoundingBox{XMin: 0, YMin: 0, XMax: w, YMax: h}
}

func TestClassifyResize(t *testing.T) {
	cases := []struct {
		name  string
		ratio float64
		want  ResizeHint
	}{
		{"面積比1.3は拡大なのだ", 1.3, ResizeLarger},
		{"面積比0.5は縮小なのだ", 0.5, ResizeSmaller},
		{"面積比1.0はリサイズなしなのだ", 1.0, ResizeNone},
		{"しきい値ちょうどの1.2はリサイズなしなのだ", 1.2, ResizeNone},
		{"しきい値ちょうどの0.8はリサイズなしなのだ", 0.8, ResizeNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// 幅だけを比率倍にすることで、面積比を浮動小数の誤差なく作るのだ
			before := boxRect(100, 100)
			after := boxRect(100*tc.ratio, 100)
			if got := ClassifyResize(before, after); got != tc.want {
				t.Errorf("判定が違うのだ。期待: %q, 実際: %q", tc.want, got)
			}
		})
	}

	t.Run("編集前の面積がゼロならリサイズなしなのだ", func(t *testing.T) {
		if got := ClassifyResize(domain.BoundingBox{}, boxRect(10, 10)); got != ResizeNone {
			t.Errorf("ゼロ面積の判定が違うのだ: %q", got)
		}
	})
}
