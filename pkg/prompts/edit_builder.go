package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// EditBuilder はマスク編集・再配置編集のプロンプトを構築します。
type EditBuilder struct{}

// NewEditBuilder は新しい EditBuilder を生成します。
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{}
}

// BuildMaskEdit は、選択オブジェクトの領域内だけを編集させるプロンプトを返すのだ。
// 2枚目の添付画像（白い領域がマスク）を編集可能領域として扱わせます。
func (eb *EditBuilder) BuildMaskEdit(instruction, label string, box domain.BoundingBox) string {
	var sb strings.Builder

	sb.WriteString("### MASKED REGION EDIT ###\n")
	sb.WriteString("The first attached image is the source. ")
	sb.WriteString("The second attached image is a mask: white marks the ONLY editable region.\n\n")

	sb.WriteString(fmt.Sprintf("Target object: %q\n", label))
	sb.WriteString(fmt.Sprintf(
		"Region (0-1000 normalized): x %.0f-%.0f, y %.0f-%.0f\n\n",
		box.XMin, box.XMax, box.YMin, box.YMax))

	sb.WriteString(fmt.Sprintf("### INSTRUCTION ###\n%s\n\n", instruction))
	sb.WriteString(EditPreservationRules)

	return sb.String()
}

// MoveDescription は移動指示プロンプト用の 1 オブジェクト分の記述です。
type MoveDescription struct {
	Label      string
	Direction  string // 例: "right and down"
	ResizeHint string
}

// BuildMoveInstruction は、添付の説明図（赤=移動前、緑=移動後、矢印=方向）を
// 読み取らせて、自然言語の移動指示文を 1 つ生成させるプロンプトを返すのだ。
func (eb *EditBuilder) BuildMoveInstruction(moves []MoveDescription) string {
	var sb strings.Builder

	sb.WriteString("The attached diagram shows objects to move in an image.\n")
	sb.WriteString("Red boxes are original positions, green boxes are target positions, ")
	sb.WriteString("arrows show the direction of movement.\n\n### OBJECTS ###\n")

	for _, m := range moves {
		sb.WriteString(fmt.Sprintf("- %q: move %s; %s\n", m.Label, m.Direction, m.ResizeHint))
	}

	sb.WriteString(`
### TASK ###
Write ONE concise imperative instruction, in plain English, describing how to
move these objects in the image. Mention each object, its direction, and
whether its apparent size changes. Do not mention boxes, arrows or the diagram.
Respond with the instruction text only.
`)

	return sb.String()
}

// BuildRepositionEdit は、得られた移動指示文を厳密な保存制約つきで
// 実行させる画像編集プロンプトを返すのだ。
func (eb *EditBuilder) BuildRepositionEdit(instruction string) string {
	var sb strings.Builder

	sb.WriteString("### REPOSITION EDIT ###\n")
	sb.WriteString("The first attached image is the source to edit.\n\n")
	sb.WriteString(fmt.Sprintf("### INSTRUCTION ###\n%s\n\n", instruction))
	sb.WriteString(RepositionRules)
	sb.WriteString("\n\n")
	sb.WriteString(EditPreservationRules)

	return sb.String()
}

// DescribeDirection は移動前後の中心座標から人間可読の方向表現を作るのだ。
func DescribeDirection(from, to domain.BoundingBox) string {
	fx, fy := from.Center()
	tx, ty := to.Center()
	dx := tx - fx
	dy := ty - fy

	// 全体の 2% 未満の移動は方向として扱わないのだ
	const deadZone = domain.BoxScale * 0.02

	var parts []string
	switch {
	case dx > deadZone:
		parts = append(parts, "right")
	case dx < -deadZone:
		parts = append(parts, "left")
	}
	switch {
	case dy > deadZone:
		parts = append(parts, "down")
	case dy < -deadZone:
		parts = append(parts, "up")
	}

	if len(parts) == 0 {
		return "in place"
	}
	return strings.Join(parts, " and ")
}
