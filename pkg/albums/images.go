package albums

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	_ "image/jpeg" // アップロード画像のデコード用

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/shouni/go-reve-kit/pkg/asset"
)

// サムネイルの最大辺。一覧表示用なので大きくしないのだ。
const thumbnailMaxSize = 320

// SavedImage は保存されたアップロード画像 1 枚分のファイル名です。
type SavedImage struct {
	Filename      string
	ThumbFilename string
}

// SaveImage はアップロード画像を一意なファイル名で保存し、サムネイルも生成するのだ。
// サムネイルが作れない形式でも保存自体は成功させ、原本をサムネイルとして使い回します。
func (s *Store) SaveImage(ctx context.Context, originalName string, data []byte) (SavedImage, error) {
	if len(data) == 0 {
		return SavedImage{}, fmt.Errorf("画像データが空です")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".png"
	}
	filename := uuid.NewString() + ext

	path, err := asset.ResolveOutputPath(s.uploadsDir, filename)
	if err != nil {
		return SavedImage{}, fmt.Errorf("画像パスの解決に失敗しました: %w", err)
	}
	if err := s.writer.Write(ctx, path, bytes.NewReader(data), mimeByExt(ext)); err != nil {
		return SavedImage{}, fmt.Errorf("画像の保存に失敗しました (%s): %w", path, err)
	}

	saved := SavedImage{Filename: filename, ThumbFilename: filename}

	thumb, err := s.saveThumbnail(ctx, filename, data)
	if err != nil {
		slog.WarnContext(ctx, "サムネイルの生成に失敗したため原本を使います",
			"filename", filename, "error", err)
		return saved, nil
	}
	saved.ThumbFilename = thumb
	return saved, nil
}

func (s *Store) saveThumbnail(ctx context.Context, filename string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	thumb := resize.Thumbnail(thumbnailMaxSize, thumbnailMaxSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("サムネイルのエンコードに失敗しました: %w", err)
	}

	thumbName := "thumb_" + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".png"
	path, err := asset.ResolveOutputPath(s.uploadsDir, thumbName)
	if err != nil {
		return "", fmt.Errorf("サムネイルパスの解決に失敗しました: %w", err)
	}
	if err := s.writer.Write(ctx, path, bytes.NewReader(buf.Bytes()), "image/png"); err != nil {
		return "", fmt.Errorf("サムネイルの保存に失敗しました (%s): %w", path, err)
	}
	return thumbName, nil
}

func mimeByExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
