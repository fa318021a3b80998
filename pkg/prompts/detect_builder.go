package prompts

import "strings"

// DetectBuilder は物体検出プロンプトを構築します。
type DetectBuilder struct{}

// NewDetectBuilder は新しい DetectBuilder を生成します。
func NewDetectBuilder() *DetectBuilder {
	return &DetectBuilder{}
}

// Build は添付画像に対する階層付き物体検出を指示するプロンプトを返すのだ。
// box_2d は 0〜1000 の正規化スケール、親子関係は parent_id で表現させます。
func (db *DetectBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString(DetectSystemInstruction)
	sb.WriteString(`

### TASK ###
Detect every salient object in the attached image, including objects that are
parts of other objects (e.g. a wheel on a car).

### OUTPUT FORMAT ###
Return a JSON array. One entry per object:
{
  "id": "short-unique-id",
  "label": "human readable label",
  "box_2d": [y_min, x_min, y_max, x_max],
  "parent_id": "id of the containing object, omit for top-level objects"
}
Coordinates are integers normalized to a 0-1000 scale.
Never reference an id that is not present in the array.
`)

	return sb.String()
}
