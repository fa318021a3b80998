package runner

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

const validPlanJSON = `{
	"acknowledgement": "かしこまりました。3案を用意します。",
	"variations": [
		{"title": "A", "description": "da", "prompt": "pa"},
		{"title": "B", "description": "db", "prompt": "pb"},
		{"title": "C", "description": "dc", "prompt": "pc"}
	],
	"follow_up_suggestions": ["f1", "f2", "f3", "f4"]
}`

func TestParsePlan(t *testing.T) {
	t.Run("コードフェンス付きJSONを解析できるのだ", func(t *testing.T) {
		raw := "Here is the plan:\n```json\n" + validPlanJSON + "\n```\nEnjoy!"
		plan, err := parsePlan(raw)
		if err != nil {
			t.Fatalf("解析に失敗したのだ: %v", err)
		}
		if len(plan.Variations) != 3 {
			t.Errorf("バリエーション数が違うのだ: %d", len(plan.Variations))
		}
		if plan.Variations[1].Title != "B" {
			t.Errorf("2案目のタイトルが違うのだ: %q", plan.Variations[1].Title)
		}
	})

	t.Run("前置きの混じった生JSONも解析できるのだ", func(t *testing.T) {
		raw := "Sure! " + validPlanJSON + " hope this helps"
		plan, err := parsePlan(raw)
		if err != nil {
			t.Fatalf("解析に失敗したのだ: %v", err)
		}
		if plan.Acknowledgement == "" {
			t.Error("acknowledgement が空なのだ")
		}
	})

	t.Run("バリエーションが3案でないとエラーになるのだ", func(t *testing.T) {
		raw := `{"acknowledgement": "ok", "variations": [{"title": "A", "description": "d", "prompt": "p"}], "follow_up_suggestions": []}`
		if _, err := parsePlan(raw); err == nil {
			t.Error("エラーが発生しなかったのだ")
		}
	})

	t.Run("フォローアップは4件に切り詰められるのだ", func(t *testing.T) {
		raw := strings.Replace(validPlanJSON,
			`["f1", "f2", "f3", "f4"]`,
			`["f1", "f2", "f3", "f4", "f5", "f6"]`, 1)
		plan, err := parsePlan(raw)
		if err != nil {
			t.Fatalf("解析に失敗したのだ: %v", err)
		}
		if len(plan.FollowUps) != 4 {
			t.Errorf("フォローアップが切り詰められていないのだ: %d", len(plan.FollowUps))
		}
	})

	t.Run("フォローアップの不足は警告つきでそのまま通るのだ", func(t *testing.T) {
		var logs bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
		defer slog.SetDefault(prev)

		raw := strings.Replace(validPlanJSON,
			`["f1", "f2", "f3", "f4"]`,
			`["f1", "f2"]`, 1)
		plan, err := parsePlan(raw)
		if err != nil {
			t.Fatalf("解析に失敗したのだ: %v", err)
		}
		if len(plan.FollowUps) != 2 {
			t.Errorf("フォローアップの件数が変わってしまったのだ: %d", len(plan.FollowUps))
		}
		if !strings.Contains(logs.String(), "フォローアップ") {
			t.Error("不足が警告されていないのだ")
		}
	})

	t.Run("JSONでない応答はエラーになるのだ", func(t *testing.T) {
		if _, err := parsePlan("ごめんなさい、今回は生成できませんでした。"); err == nil {
			t.Error("エラーが発生しなかったのだ")
		}
	})
}
