package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

func TestDescribeDirection(t *testing.T) {
	base := domain.BoundingBox{XMin: 400, YMin: 400, XMax: 600, YMax: 600}

	cases := []struct {
		name string
		to   domain.BoundingBox
		want string
	}{
		{"右下への移動なのだ", domain.BoundingBox{XMin: 600, YMin: 600, XMax: 800, YMax: 800}, "right and down"},
		{"左への移動なのだ", domain.BoundingBox{XMin: 100, YMin: 400, XMax: 300, YMax: 600}, "left"},
		{"上への移動なのだ", domain.BoundingBox{XMin: 400, YMin: 100, XMax: 600, YMax: 300}, "up"},
		{"微小な移動は方向なしなのだ", domain.BoundingBox{XMin: 405, YMin: 398, XMax: 605, YMax: 598}, "in place"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DescribeDirection(base, tc.to); got != tc.want {
				t.Errorf("方向が違うのだ。期待: %q, 実際: %q", tc.want, got)
			}
		})
	}
}

func TestEditBuilder_BuildMaskEdit(t *testing.T) {
	t.Run("対象ラベルと領域と保存制約が含まれるのだ", func(t *testing.T) {
		eb := NewEditBuilder()
		prompt := eb.BuildMaskEdit("make the cup blue", "cup",
			domain.BoundingBox{XMin: 100, YMin: 200, XMax: 300, YMax: 400})

		for _, want := range []string{`"cup"`, "make the cup blue", "x 100-300", "y 200-400", "PRESERVATION RULES"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("プロンプトに %q が含まれていないのだ", want)
			}
		}
	})
}

func TestEditBuilder_BuildMoveInstruction(t *testing.T) {
	t.Run("各オブジェクトの方向とリサイズ指示が列挙されるのだ", func(t *testing.T) {
		eb := NewEditBuilder()
		prompt := eb.BuildMoveInstruction([]MoveDescription{
			{Label: "cat", Direction: "left", ResizeHint: "do not resize"},
			{Label: "ball", Direction: "right and down", ResizeHint: "make it appear closer and larger"},
		})

		for _, want := range []string{`"cat": move left`, `"ball": move right and down`, "closer and larger"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("プロンプトに %q が含まれていないのだ", want)
			}
		}
	})
}
