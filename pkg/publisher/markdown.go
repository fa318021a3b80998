package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-reve-kit/pkg/domain"
)

// buildGalleryMarkdown はアルバム 1 冊分のギャラリー Markdown を構築するのだ。
// imagePaths はギャラリー画像（ImageURL を持つもの）と同じ並びの相対パスです。
func buildGalleryMarkdown(album domain.Album, imagePaths []string) string {
	var sb strings.Builder

	title := album.Title
	if title == "" {
		title = "Untitled Album"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if !album.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created: %s\n\n", album.CreatedAt.Format("2006-01-02")))
	}

	pathIdx := 0
	for _, img := range album.GalleryImages {
		heading := img.Title
		if heading == "" {
			heading = img.Filename
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", heading))

		if img.ImageURL != "" && pathIdx < len(imagePaths) {
			sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", heading, imagePaths[pathIdx]))
			pathIdx++
		}

		if img.Description != "" {
			sb.WriteString(img.Description + "\n\n")
		}

		if len(img.Objects) > 0 {
			sb.WriteString("Detected objects:\n")
			for _, obj := range img.Objects {
				writeObjectLine(&sb, obj, 0)
			}
			sb.WriteString("\n")
		}
	}

	if len(album.ChatHistory) > 0 {
		sb.WriteString("## Session Transcript\n\n")
		for _, msg := range album.ChatHistory {
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", msg.Role, text))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeObjectLine は検出オブジェクトを階層インデント付きの箇条書きにします。
func writeObjectLine(sb *strings.Builder, obj *domain.DetectedObject, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(fmt.Sprintf("- %s\n", obj.Label))
	for _, child := range obj.Children {
		writeObjectLine(sb, child, depth+1)
	}
}
