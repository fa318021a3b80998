package prompts

import (
	"fmt"
	"strings"
)

// PlanData は構成案プロンプトの材料です。
type PlanData struct {
	Prompt      string // ユーザーの指示文
	SourceCount int    // 添付されたソース画像の枚数
	WebContext  string // 抽出済みのWebコンテキスト（任意）
}

// PlanBuilder は生成パイプラインの構成案プロンプトを構築します。
type PlanBuilder struct{}

// NewPlanBuilder は新しい PlanBuilder を生成します。
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{}
}

// Build はユーザー指示から、3案のバリエーションと4件のフォローアップ提案を
// JSON で返させるプロンプトを組み立てるのだ。
func (pb *PlanBuilder) Build(data PlanData) string {
	var sb strings.Builder

	sb.WriteString(PlanSystemInstruction)
	sb.WriteString("\n\n### TASK ###\n")

	if data.SourceCount > 0 {
		sb.WriteString(fmt.Sprintf("The user attached %d source image(s). ", data.SourceCount))
		sb.WriteString("Plan three distinct edits or reinterpretations of them.\n")
	} else {
		sb.WriteString("Plan three distinct images generated from scratch.\n")
	}

	sb.WriteString(fmt.Sprintf("\n### USER REQUEST ###\n%s\n", data.Prompt))

	if data.WebContext != "" {
		sb.WriteString(fmt.Sprintf("\n### WEB CONTEXT ###\n%s\n", data.WebContext))
	}

	sb.WriteString(`
### OUTPUT FORMAT ###
Return exactly this JSON shape:
{
  "acknowledgement": "one short sentence acknowledging the request",
  "variations": [
    {"title": "...", "description": "...", "prompt": "full image-generation prompt"}
  ],
  "follow_up_suggestions": ["...", "...", "...", "..."]
}
The "variations" array must contain exactly 3 entries.
The "follow_up_suggestions" array must contain exactly 4 short suggestions.
`)

	return sb.String()
}
