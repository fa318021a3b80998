package publisher

import (
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

func TestBuildGalleryMarkdown(t *testing.T) {
	album := domain.Album{
		Title:     "夏の思い出",
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		GalleryImages: []domain.GalleryImage{
			{
				Title:       "海辺の猫",
				Description: "夕焼けの海辺を歩く猫",
				ImageURL:    "uploads/cat.png",
				Filename:    "cat.png",
				Objects: []*domain.DetectedObject{
					{ID: "cat", Label: "cat", Children: []*domain.DetectedObject{
						{ID: "tail", Label: "tail"},
					}},
				},
			},
			{Title: "画像なしの下書き"},
		},
		ChatHistory: []domain.ChatMessage{
			{Role: "user", Text: "猫の写真を作って"},
			{Role: "model", Text: "了解なのだ"},
		},
	}

	md := buildGalleryMarkdown(album, []string{"images/gallery_1.png"})

	t.Run("タイトルと作成日が含まれるのだ", func(t *testing.T) {
		for _, want := range []string{"# 夏の思い出", "Created: 2026-08-01"} {
			if !strings.Contains(md, want) {
				t.Errorf("%q が含まれていないのだ", want)
			}
		}
	})

	t.Run("画像は相対パスで埋め込まれるのだ", func(t *testing.T) {
		if !strings.Contains(md, "![海辺の猫](images/gallery_1.png)") {
			t.Error("画像の埋め込みが無いのだ")
		}
	})

	t.Run("画像の無いエントリには埋め込みが出ないのだ", func(t *testing.T) {
		if strings.Count(md, "![") != 1 {
			t.Errorf("画像の埋め込み数が違うのだ:\n%s", md)
		}
	})

	t.Run("検出オブジェクトが階層つきで列挙されるのだ", func(t *testing.T) {
		if !strings.Contains(md, "- cat\n  - tail") {
			t.Errorf("オブジェクトの階層が崩れているのだ:\n%s", md)
		}
	})

	t.Run("チャット履歴が書き起こされるのだ", func(t *testing.T) {
		if !strings.Contains(md, "**user**: 猫の写真を作って") {
			t.Error("チャット履歴が含まれていないのだ")
		}
	})

	t.Run("タイトルが空でも見出しが出るのだ", func(t *testing.T) {
		md := buildGalleryMarkdown(domain.Album{}, nil)
		if !strings.Contains(md, "# Untitled Album") {
			t.Error("既定タイトルが使われていないのだ")
		}
	})
}
