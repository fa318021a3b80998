package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// memFS はテスト用のインメモリファイルシステムです。
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memFS) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memFS) Write(_ context.Context, path string, data io.Reader, _ string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = b
	return nil
}

// newTestService はサービス一式を stdlib の ServeMux に載せて起動するのだ。
// ルーティングパターンは本番と同じものを使います。
func newTestService(t *testing.T) (*httptest.Server, *albums.Client) {
	t.Helper()

	fs := &memFS{files: map[string][]byte{}}
	store, err := albums.NewStore(context.Background(), fs, fs, "data", "uploads")
	if err != nil {
		t.Fatalf("Store の初期化に失敗したのだ: %v", err)
	}

	albumController := NewAlbumController(AlbumControllerConfig{Store: store})
	imageController := NewImageController(ImageControllerConfig{Store: store})

	m := http.NewServeMux()
	for _, route := range Routes(albumController, imageController) {
		m.HandleFunc(route.Path, route.HandlerFunc)
	}

	ts := httptest.NewServer(m)
	t.Cleanup(ts.Close)

	return ts, albums.NewClient(ts.URL, 5*time.Second)
}

func TestAlbumAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("作成から削除までの一連の操作ができるのだ", func(t *testing.T) {
		_, client := newTestService(t)

		created, err := client.Create(ctx, "旅行の記録")
		if err != nil {
			t.Fatalf("作成に失敗したのだ: %v", err)
		}
		if created.ID == "" {
			t.Fatal("ID が採番されていないのだ")
		}

		got, err := client.Get(ctx, created.ID)
		if err != nil || got.Title != "旅行の記録" {
			t.Fatalf("取得結果が違うのだ: %+v, err=%v", got, err)
		}

		history := []domain.ChatMessage{{Role: "user", Text: "こんにちは"}}
		updated, err := client.Update(ctx, created.ID, domain.AlbumUpdate{ChatHistory: &history})
		if err != nil {
			t.Fatalf("更新に失敗したのだ: %v", err)
		}
		if updated.Title != "旅行の記録" || len(updated.ChatHistory) != 1 {
			t.Errorf("部分更新になっていないのだ: %+v", updated)
		}

		if err := client.Delete(ctx, created.ID); err != nil {
			t.Fatalf("削除に失敗したのだ: %v", err)
		}
		if _, err := client.Get(ctx, created.ID); err == nil {
			t.Error("削除後も取得できてしまうのだ")
		}
	})

	t.Run("存在しないアルバムは404になるのだ", func(t *testing.T) {
		ts, _ := newTestService(t)

		resp, err := http.Get(ts.URL + "/api/albums/missing")
		if err != nil {
			t.Fatalf("リクエストに失敗したのだ: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("ステータスが違うのだ: %d", resp.StatusCode)
		}
	})
}

func TestImageAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("base64取り込みから配信までの往復ができるのだ", func(t *testing.T) {
		ts, client := newTestService(t)

		payload := []byte("fake-image-bytes")
		res, err := client.IngestBase64(ctx, albums.Base64Ingest{
			Filename: "gen.png",
			Data:     base64.StdEncoding.EncodeToString(payload),
		})
		if err != nil {
			t.Fatalf("取り込みに失敗したのだ: %v", err)
		}
		if !strings.HasPrefix(res.URL, "/api/images/") {
			t.Errorf("URL が採番されていないのだ: %+v", res)
		}

		resp, err := http.Get(ts.URL + res.URL)
		if err != nil {
			t.Fatalf("配信リクエストに失敗したのだ: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if !bytes.Equal(body, payload) {
			t.Errorf("配信された内容が元と違うのだ: %q", body)
		}
	})

	t.Run("data URI プレフィックス付きでも取り込めるのだ", func(t *testing.T) {
		_, client := newTestService(t)

		encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
		if _, err := client.IngestBase64(ctx, albums.Base64Ingest{Filename: "gen.png", Data: encoded}); err != nil {
			t.Fatalf("取り込みに失敗したのだ: %v", err)
		}
	})

	t.Run("albumId付きの取り込みはギャラリーへ追記されるのだ", func(t *testing.T) {
		_, client := newTestService(t)

		album, err := client.Create(ctx, "生成結果")
		if err != nil {
			t.Fatalf("アルバム作成に失敗したのだ: %v", err)
		}

		res, err := client.IngestBase64(ctx, albums.Base64Ingest{
			Filename:    "gen.png",
			Data:        base64.StdEncoding.EncodeToString([]byte("img")),
			Title:       "夕焼けの街",
			Description: "一案目なのだ",
			AlbumID:     album.ID,
			Objects: []*domain.DetectedObject{
				{ID: "obj-1", Label: "building"},
			},
		})
		if err != nil {
			t.Fatalf("取り込みに失敗したのだ: %v", err)
		}

		got, err := client.Get(ctx, album.ID)
		if err != nil {
			t.Fatalf("アルバム取得に失敗したのだ: %v", err)
		}
		if len(got.GalleryImages) != 1 {
			t.Fatalf("ギャラリーに追記されていないのだ: %d", len(got.GalleryImages))
		}
		img := got.GalleryImages[0]
		if img.Title != "夕焼けの街" || img.Description != "一案目なのだ" {
			t.Errorf("メタデータが違うのだ: %+v", img)
		}
		if img.ImageURL != res.URL || img.ThumbnailURL != res.ThumbnailURL {
			t.Errorf("URLが一致しないのだ: %+v", img)
		}
		if len(img.Objects) != 1 || img.Objects[0].Label != "building" {
			t.Errorf("オブジェクト情報が引き継がれていないのだ: %+v", img.Objects)
		}
	})

	t.Run("存在しないalbumIdでも画像の保存自体は成功するのだ", func(t *testing.T) {
		_, client := newTestService(t)

		res, err := client.IngestBase64(ctx, albums.Base64Ingest{
			Filename: "gen.png",
			Data:     base64.StdEncoding.EncodeToString([]byte("img")),
			AlbumID:  "ghost",
		})
		if err != nil {
			t.Fatalf("取り込みがエラーになったのだ: %v", err)
		}
		if res.URL == "" {
			t.Error("URL が採番されていないのだ")
		}
	})

	t.Run("multipartアップロードもalbumIdでギャラリーへ追記されるのだ", func(t *testing.T) {
		_, client := newTestService(t)

		album, err := client.Create(ctx, "アップロード")
		if err != nil {
			t.Fatalf("アルバム作成に失敗したのだ: %v", err)
		}

		if _, err := client.UploadImage(ctx, "cat.png", []byte("png-bytes"), albums.ImageMeta{
			AlbumID: album.ID,
		}); err != nil {
			t.Fatalf("アップロードに失敗したのだ: %v", err)
		}

		got, err := client.Get(ctx, album.ID)
		if err != nil {
			t.Fatalf("アルバム取得に失敗したのだ: %v", err)
		}
		if len(got.GalleryImages) != 1 {
			t.Fatalf("ギャラリーに追記されていないのだ: %d", len(got.GalleryImages))
		}
		// title 未指定時は元のファイル名が使われるのだ
		if got.GalleryImages[0].Title != "cat.png" {
			t.Errorf("タイトルの既定値が違うのだ: %q", got.GalleryImages[0].Title)
		}
	})

	t.Run("パス走査なファイル名は拒否されるのだ", func(t *testing.T) {
		ts, _ := newTestService(t)

		resp, err := http.Get(ts.URL + "/api/images/..%2Fdata%2Falbums.json")
		if err != nil {
			t.Fatalf("リクエストに失敗したのだ: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			t.Error("台帳ファイルが読めてしまうのだ")
		}
	})
}
