package albums

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// memFS は InputReader / OutputWriter を満たすテスト用のインメモリ実装です。
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}}
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

func (m *memFS) pathsContaining(sub string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if strings.Contains(p, sub) {
			out = append(out, p)
		}
	}
	return out
}

func newTestStore(t *testing.T, fs *memFS) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), fs, fs, "data", "uploads")
	if err != nil {
		t.Fatalf("Store の初期化に失敗したのだ: %v", err)
	}
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("テスト画像の生成に失敗したのだ: %v", err)
	}
	return buf.Bytes()
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("作成したアルバムは別の Store からも読み直せるのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		created, err := s.Create(ctx, "最初のアルバム")
		if err != nil {
			t.Fatalf("作成に失敗したのだ: %v", err)
		}
		if created.ID == "" {
			t.Error("ID が採番されていないのだ")
		}

		reopened := newTestStore(t, fs)
		got, err := reopened.Get(created.ID)
		if err != nil {
			t.Fatalf("読み直しに失敗したのだ: %v", err)
		}
		if got.Title != "最初のアルバム" {
			t.Errorf("タイトルが違うのだ: %q", got.Title)
		}
	})

	t.Run("更新は指定したフィールドだけを差し替えるのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		created, _ := s.Create(ctx, "title")
		if _, err := s.AppendGalleryImage(ctx, created.ID, domain.GalleryImage{ID: "g1", Title: "img"}); err != nil {
			t.Fatalf("ギャラリー追加に失敗したのだ: %v", err)
		}

		newTitle := "改題"
		updated, err := s.Update(ctx, created.ID, domain.AlbumUpdate{Title: &newTitle})
		if err != nil {
			t.Fatalf("更新に失敗したのだ: %v", err)
		}
		if updated.Title != "改題" {
			t.Errorf("タイトルが更新されていないのだ: %q", updated.Title)
		}
		if len(updated.GalleryImages) != 1 {
			t.Errorf("指定していないギャラリーが消えたのだ: %+v", updated.GalleryImages)
		}
	})

	t.Run("チャット履歴の置き換えもフィールド単位なのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		created, _ := s.Create(ctx, "title")
		history := []domain.ChatMessage{{Role: "user", Text: "hi"}}
		updated, err := s.Update(ctx, created.ID, domain.AlbumUpdate{ChatHistory: &history})
		if err != nil {
			t.Fatalf("更新に失敗したのだ: %v", err)
		}
		if len(updated.ChatHistory) != 1 || updated.Title != "title" {
			t.Errorf("履歴だけが置き換わっていないのだ: %+v", updated)
		}
	})

	t.Run("削除後の取得は ErrNotFound なのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		created, _ := s.Create(ctx, "title")
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("削除に失敗したのだ: %v", err)
		}
		if _, err := s.Get(created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("ErrNotFound が返らないのだ: %v", err)
		}
		if err := s.Delete(ctx, created.ID+"x"); !errors.Is(err, ErrNotFound) {
			t.Errorf("存在しない ID の削除が ErrNotFound にならないのだ: %v", err)
		}
	})
}

func TestStore_SaveImage(t *testing.T) {
	ctx := context.Background()

	t.Run("画像とサムネイルが保存されるのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		saved, err := s.SaveImage(ctx, "photo.png", pngBytes(t, 800, 600))
		if err != nil {
			t.Fatalf("保存に失敗したのだ: %v", err)
		}
		if saved.Filename == "" || saved.ThumbFilename == saved.Filename {
			t.Errorf("サムネイルが生成されていないのだ: %+v", saved)
		}
		if len(fs.pathsContaining("thumb_")) != 1 {
			t.Error("サムネイルファイルが保存されていないのだ")
		}

		rc, err := s.OpenImage(ctx, saved.Filename)
		if err != nil {
			t.Fatalf("読み出しに失敗したのだ: %v", err)
		}
		rc.Close()
	})

	t.Run("デコードできない形式でも原本は保存されるのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		saved, err := s.SaveImage(ctx, "data.webp", []byte("not-an-image"))
		if err != nil {
			t.Fatalf("保存に失敗したのだ: %v", err)
		}
		if saved.ThumbFilename != saved.Filename {
			t.Errorf("原本がサムネイルとして使われていないのだ: %+v", saved)
		}
	})

	t.Run("パス区切りを含むファイル名は拒否するのだ", func(t *testing.T) {
		fs := newMemFS()
		s := newTestStore(t, fs)

		if _, err := s.OpenImage(ctx, "../data/albums.json"); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("ErrInvalidFilename が返らないのだ: %v", err)
		}
	})
}
