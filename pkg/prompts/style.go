package prompts

// 各プロンプトで共有する指示ブロックの定義なのだ。

const (
	// PlanSystemInstruction は構成案生成時のモデルの役割定義です。
	PlanSystemInstruction = "You are a creative director for an AI image studio. " +
		"Respond ONLY with a single JSON object inside a fenced code block."

	// DetectSystemInstruction は物体検出時のモデルの役割定義です。
	DetectSystemInstruction = "You are a precise visual analysis engine. " +
		"Respond ONLY with a single JSON array inside a fenced code block."

	// EditPreservationRules は編集系プロンプト共通の保存制約です。
	// 指定領域の外には一切手を加えさせないための定型文なのだ。
	EditPreservationRules = `### PRESERVATION RULES ###
- Preserve the exact style, lighting, color grading and grain of the original image.
- Do NOT change anything outside the specified region.
- Do NOT add captions, watermarks or borders.`

	// RepositionRules は再配置編集に固有の制約です。移動元の跡地は背景で
	// 自然に埋め、移動対象以外は変更させません。
	RepositionRules = `### REPOSITION RULES ###
- Remove each object from its original position and inpaint that area with a
  plausible continuation of the background.
- Render each object at its new position, matching perspective and lighting.
- Everything not listed as a moved object must remain pixel-identical.`
)
