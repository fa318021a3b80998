package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-reve-kit/pkg/asset"
	"github.com/shouni/go-reve-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-text-format/pkg/md2htmlrunner"
)

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath string   // 生成された gallery.md のパス
	HTMLPath     string   // 生成された HTML のパス
	ImagePaths   []string // 保存された全画像のパスリスト
}

const defaultImageDirName = "images"

// GalleryPublisher はアルバムのギャラリー書き出しとフォーマット変換を担います。
type GalleryPublisher struct {
	reader     remoteio.InputReader
	writer     remoteio.OutputWriter
	htmlRunner md2htmlrunner.Runner
}

// NewGalleryPublisher は依存関係を注入して初期化します。
func NewGalleryPublisher(reader remoteio.InputReader, writer remoteio.OutputWriter, htmlRunner md2htmlrunner.Runner) *GalleryPublisher {
	return &GalleryPublisher{
		reader:     reader,
		writer:     writer,
		htmlRunner: htmlRunner,
	}
}

// Run はギャラリー画像のコピー、Markdownの構築、HTML変換を一括して実行し、
// 生成されたファイル情報を返却するのだ！
func (p *GalleryPublisher) Run(ctx context.Context, album domain.Album, outputDir string) (PublishResult, error) {
	result := PublishResult{}

	markdownPath, err := asset.ResolveOutputPath(outputDir, asset.DefaultGalleryName)
	if err != nil {
		return result, err
	}
	result.MarkdownPath = markdownPath

	imgDir, err := asset.ResolveOutputPath(outputDir, defaultImageDirName)
	if err != nil {
		return result, err
	}

	savedPaths, err := p.copyImages(ctx, album.GalleryImages, imgDir)
	if err != nil {
		return result, fmt.Errorf("ギャラリー画像のコピーに失敗しました: %w", err)
	}
	result.ImagePaths = savedPaths

	// Markdown には出力ディレクトリからの相対パスを埋め込むのだ
	relativePaths := make([]string, 0, len(savedPaths))
	for _, pathStr := range savedPaths {
		relativePaths = append(relativePaths, path.Join(defaultImageDirName, filepath.Base(pathStr)))
	}

	content := buildGalleryMarkdown(album, relativePaths)

	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}

	if p.htmlRunner != nil {
		slog.Info("Converting gallery to HTML", "title", album.Title)
		htmlBuffer, err := p.htmlRunner.Run(ctx, album.Title, []byte(content))
		if err != nil {
			return result, fmt.Errorf("HTMLの変換に失敗しました: %w", err)
		}

		htmlPath := strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath)) + ".html"
		if err := p.writer.Write(ctx, htmlPath, htmlBuffer, "text/html; charset=utf-8"); err != nil {
			return result, fmt.Errorf("HTMLファイルの書き込みに失敗しました: %w", err)
		}
		result.HTMLPath = htmlPath
	}

	return result, nil
}

// copyImages はギャラリー画像を出力ディレクトリへ複製し、保存先のパスを返します。
func (p *GalleryPublisher) copyImages(ctx context.Context, images []domain.GalleryImage, baseDir string) ([]string, error) {
	var paths []string
	for i, img := range images {
		if img.ImageURL == "" {
			continue
		}

		data, err := p.readAll(ctx, img.ImageURL)
		if err != nil {
			return nil, err
		}

		ext := filepath.Ext(img.Filename)
		if ext == "" {
			ext = ".png"
		}
		name := fmt.Sprintf("gallery_%d%s", i+1, ext)
		fullPath, err := asset.ResolveOutputPath(baseDir, name)
		if err != nil {
			return nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}

		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(data), mimeByExt(ext)); err != nil {
			return nil, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		paths = append(paths, fullPath)
	}
	return paths, nil
}

func (p *GalleryPublisher) readAll(ctx context.Context, url string) ([]byte, error) {
	rc, err := p.reader.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (%s): %w", url, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (%s): %w", url, err)
	}
	return data, nil
}

func mimeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
