package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/domain"
	"github.com/shouni/go-reve-kit/pkg/prompts"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

const (
	planVariationCount = 3
	planFollowUpLimit  = 4
)

// GenerationPlanRunner は、ユーザーの指示から 3 案の構成プランを生成します。
type GenerationPlanRunner struct {
	cfg       config.Config
	extractor *extract.Extractor
	builder   *prompts.PlanBuilder
	aiClient  gemini.GenerativeModel
}

// NewGenerationPlanRunner は依存関係（ビルダーを含む）を注入して初期化します。
func NewGenerationPlanRunner(
	cfg config.Config,
	ext *extract.Extractor,
	pb *prompts.PlanBuilder,
	ai gemini.GenerativeModel,
) *GenerationPlanRunner {
	return &GenerationPlanRunner{
		cfg:       cfg,
		extractor: ext,
		builder:   pb,
		aiClient:  ai,
	}
}

// Run は指示文（と任意の参考URL）から構成プランを生成するのだ。
// 参考URLの抽出に失敗しても、プラン生成自体は止めずに続行します。
func (pr *GenerationPlanRunner) Run(ctx context.Context, prompt string, sourceCount int, contextURL string) (domain.GenerationPlan, error) {
	webContext := ""
	if contextURL != "" {
		text, _, err := pr.extractor.FetchAndExtractText(ctx, contextURL)
		if err != nil {
			slog.WarnContext(ctx, "Webコンテキストの抽出に失敗したため、指示文のみでプランを生成します",
				"url", contextURL, "error", err)
		} else {
			webContext = text
		}
	}

	finalPrompt := pr.builder.Build(prompts.PlanData{
		Prompt:      prompt,
		SourceCount: sourceCount,
		WebContext:  webContext,
	})

	slog.InfoContext(ctx, "PlanRunner: Calling Gemini API", "model", pr.cfg.GeminiModel)
	resp, err := pr.aiClient.GenerateContent(ctx, finalPrompt, pr.cfg.GeminiModel)
	if err != nil {
		return domain.GenerationPlan{}, fmt.Errorf("構成プランの生成に失敗しました: %w", err)
	}

	return parsePlan(resp.Text)
}

// parsePlan は AI 応答から GenerationPlan を取り出し、件数の制約を検証するのだ。
func parsePlan(raw string) (domain.GenerationPlan, error) {
	rawJSON := extractJSON(raw, "{", "}")

	var plan domain.GenerationPlan
	if err := json.Unmarshal([]byte(rawJSON), &plan); err != nil {
		return domain.GenerationPlan{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}

	if len(plan.Variations) != planVariationCount {
		return domain.GenerationPlan{}, fmt.Errorf("バリエーションは %d 案必要ですが、%d 案しか得られませんでした", planVariationCount, len(plan.Variations))
	}
	switch {
	case len(plan.FollowUps) > planFollowUpLimit:
		plan.FollowUps = plan.FollowUps[:planFollowUpLimit]
	case len(plan.FollowUps) < planFollowUpLimit:
		// プロンプトは 4 件を要求しているが、不足はプランを捨てるほどの欠陥ではないのだ
		slog.Warn("フォローアップ提案が要求件数に満たないため、そのまま続行します",
			"got", len(plan.FollowUps), "want", planFollowUpLimit)
	}

	return plan, nil
}

// extractJSON は、コードフェンスや前置きの混じった応答から JSON 本体を取り出します。
func extractJSON(raw, openTok, closeTok string) string {
	raw = strings.TrimSpace(raw)

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		return matches[1]
	}

	// Fallback 1: 最外の括弧の組を探す
	first := strings.Index(raw, openTok)
	last := strings.LastIndex(raw, closeTok)
	if first != -1 && last != -1 && last > first {
		return raw[first : last+1]
	}

	// Fallback 2: 応答全体を JSON とみなす
	return raw
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
