package albums

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// ErrNotFound は指定されたアルバムが存在しないことを示します。
var ErrNotFound = errors.New("アルバムが見つかりません")

// ErrInvalidFilename は画像ファイル名として受け付けられないことを示します。
var ErrInvalidFilename = errors.New("不正なファイル名です")

// InputReader は保存済みファイルの読み出しへの最小限の契約です。
// remoteio.InputReader がこれを満たします。
type InputReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// OutputWriter は台帳・画像の書き込みへの最小限の契約です。
// remoteio.OutputWriter がこれを満たします。
type OutputWriter interface {
	Write(ctx context.Context, path string, data io.Reader, mimeType string) error
}

// Store はアルバム台帳（JSON ドキュメント）とアップロード画像を永続化するのだ。
// 台帳全体をメモリに持ち、変更のたびに 1 ファイルへ書き戻します。
type Store struct {
	reader     InputReader
	writer     OutputWriter
	dataDir    string
	uploadsDir string

	mu     sync.RWMutex
	albums []domain.Album
}

// NewStore は台帳を読み込んだ状態の Store を返します。
// 台帳ファイルがまだ無い場合は空の台帳で開始するのだ。
func NewStore(ctx context.Context, reader InputReader, writer OutputWriter, dataDir, uploadsDir string) (*Store, error) {
	s := &Store{
		reader:     reader,
		writer:     writer,
		dataDir:    dataDir,
		uploadsDir: uploadsDir,
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	path, err := asset.ResolveOutputPath(s.dataDir, asset.DefaultAlbumsFileName)
	if err != nil {
		return fmt.Errorf("台帳パスの解決に失敗しました: %w", err)
	}

	rc, err := s.reader.Open(ctx, path)
	if err != nil {
		slog.InfoContext(ctx, "アルバム台帳が無いため空の台帳で開始します", "path", path)
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("台帳の読み込みに失敗しました: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.albums); err != nil {
		return fmt.Errorf("台帳の解析に失敗しました (path: %s): %w", path, err)
	}
	return nil
}

// persist は台帳全体を JSON へ書き戻します。呼び出し側でロックを取ること。
func (s *Store) persist(ctx context.Context) error {
	path, err := asset.ResolveOutputPath(s.dataDir, asset.DefaultAlbumsFileName)
	if err != nil {
		return fmt.Errorf("台帳パスの解決に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(s.albums, "", "  ")
	if err != nil {
		return fmt.Errorf("台帳のシリアライズに失敗しました: %w", err)
	}

	if err := s.writer.Write(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("台帳の書き込みに失敗しました: %w", err)
	}
	return nil
}

// List は全アルバムを作成日時の新しい順で返します。
func (s *Store) List() []domain.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Album, len(s.albums))
	copy(out, s.albums)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get は ID でアルバムを 1 冊返します。
func (s *Store) Get(id string) (domain.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.albums {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Album{}, fmt.Errorf("%w (id: %s)", ErrNotFound, id)
}

// Create は新しいアルバムを作成して永続化するのだ。ID はサーバー側で採番します。
func (s *Store) Create(ctx context.Context, title string) (domain.Album, error) {
	album := domain.Album{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums = append(s.albums, album)
	if err := s.persist(ctx); err != nil {
		s.albums = s.albums[:len(s.albums)-1]
		return domain.Album{}, err
	}
	return album, nil
}

// Update は指定されたフィールドだけを差し替えて永続化します。
// nil のままのフィールドは変更されないのだ。
func (s *Store) Update(ctx context.Context, id string, update domain.AlbumUpdate) (domain.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.albums {
		if s.albums[i].ID != id {
			continue
		}

		before := s.albums[i]
		if update.Title != nil {
			s.albums[i].Title = *update.Title
		}
		if update.ChatHistory != nil {
			s.albums[i].ChatHistory = *update.ChatHistory
		}
		if update.GalleryImages != nil {
			s.albums[i].GalleryImages = *update.GalleryImages
		}

		if err := s.persist(ctx); err != nil {
			s.albums[i] = before
			return domain.Album{}, err
		}
		return s.albums[i], nil
	}
	return domain.Album{}, fmt.Errorf("%w (id: %s)", ErrNotFound, id)
}

// AppendGalleryImage はアルバムのギャラリー末尾に 1 枚追加して永続化します。
func (s *Store) AppendGalleryImage(ctx context.Context, id string, img domain.GalleryImage) (domain.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.albums {
		if s.albums[i].ID != id {
			continue
		}

		s.albums[i].GalleryImages = append(s.albums[i].GalleryImages, img)
		if err := s.persist(ctx); err != nil {
			s.albums[i].GalleryImages = s.albums[i].GalleryImages[:len(s.albums[i].GalleryImages)-1]
			return domain.Album{}, err
		}
		return s.albums[i], nil
	}
	return domain.Album{}, fmt.Errorf("%w (id: %s)", ErrNotFound, id)
}

// Delete はアルバムを台帳から取り除いて永続化します。
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.albums {
		if s.albums[i].ID != id {
			continue
		}

		removed := s.albums[i]
		s.albums = append(s.albums[:i], s.albums[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.albums = append(s.albums, removed)
			return err
		}
		return nil
	}
	return fmt.Errorf("%w (id: %s)", ErrNotFound, id)
}

// OpenImage はアップロード済み画像を読み出し用に開きます。
// パス区切りを含むファイル名はディレクトリ外への参照として拒否するのだ。
func (s *Store) OpenImage(ctx context.Context, filename string) (io.ReadCloser, error) {
	if !validFilename(filename) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	path, err := asset.ResolveOutputPath(s.uploadsDir, filename)
	if err != nil {
		return nil, fmt.Errorf("画像パスの解決に失敗しました: %w", err)
	}
	return s.reader.Open(ctx, path)
}

func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
