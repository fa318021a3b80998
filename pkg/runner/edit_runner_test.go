package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/shouni/go-reve-kit/pkg/config"
	"github.com/shouni/go-reve-kit/pkg/prompts"
)

func newTestEditRunner(engine *fakeEngine, vision VisionModel) *ImageEditRunner {
	return NewImageEditRunner(
		config.DefaultConfig(),
		newTestComposer(engine),
		prompts.NewEditBuilder(),
		vision,
		nil, // reader は候補生成のテストでは使わないのだ
		nil,
		"",
	)
}

func TestImageEditRunner_runCandidates(t *testing.T) {
	t.Run("候補は3件同時に発行されるのだ", func(t *testing.T) {
		engine := &fakeEngine{}
		er := newTestEditRunner(engine, nil)

		v, err := er.runCandidates(context.Background(), "prompt", []string{"files/src.png"}, "desc")
		if err != nil {
			t.Fatalf("編集に失敗したのだ: %v", err)
		}
		if len(engine.requests) != config.DefaultEditCandidates {
			t.Errorf("リクエスト数が違うのだ: %d", len(engine.requests))
		}
		if len(v.Data) == 0 || v.Description != "desc" {
			t.Errorf("結果が不正なのだ: %+v", v)
		}
	})

	t.Run("一部の候補が失敗しても成功した候補を採用するのだ", func(t *testing.T) {
		engine := &fakeEngine{failFirst: 2}
		er := newTestEditRunner(engine, nil)

		v, err := er.runCandidates(context.Background(), "prompt", nil, "desc")
		if err != nil {
			t.Fatalf("成功候補が採用されなかったのだ: %v", err)
		}
		if string(v.Data) != "png-bytes" {
			t.Errorf("採用された画像が違うのだ: %q", v.Data)
		}
	})

	t.Run("全候補が失敗したらエラーになるのだ", func(t *testing.T) {
		engine := &fakeEngine{failFirst: 100}
		er := newTestEditRunner(engine, nil)

		if _, err := er.runCandidates(context.Background(), "prompt", nil, "desc"); err == nil {
			t.Error("エラーが発生しなかったのだ")
		} else if !strings.Contains(err.Error(), "候補が失敗") {
			t.Errorf("エラーメッセージが想定と違うのだ: %v", err)
		}
	})
}
