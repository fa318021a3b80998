package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir は生成された画像を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultAlbumsFileName はアルバム台帳のデフォルト JSON ファイル名です。
	DefaultAlbumsFileName = "albums.json"
	// DefaultVariationFileName はバリエーション画像の共通のベースファイル名です。
	DefaultVariationFileName = "variation.png"
	// DefaultMaskFileName は編集マスク画像のベースファイル名です。
	DefaultMaskFileName = "mask.png"
	// DefaultGalleryName はギャラリー出力のデフォルト Markdown ファイル名です。
	DefaultGalleryName = "gallery.md"
)

// VariationFileRegex はバリエーション画像 (variation_1.png 等) に一致します
var VariationFileRegex = createIndexedRegex(DefaultVariationFileName)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.png", 1 -> "path/to/image_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "variation.png" -> ^variation_\d+\.png$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
