package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// アップロードの上限。生成画像でもこのサイズを超えることはまず無いのだ。
const maxUploadBytes = 32 << 20

type ImageControllerConfig struct {
	Store AlbumStorer
}

type ImageController struct {
	store AlbumStorer
}

func NewImageController(config ImageControllerConfig) ImageController {
	return ImageController{
		store: config.Store,
	}
}

// galleryMeta は取り込み時に添えられるギャラリー用メタデータです。
type galleryMeta struct {
	Title       string
	Description string
	AlbumID     string
	Objects     []*domain.DetectedObject
}

/*
POST /api/images/upload

multipart の "image" フィールドを受け取ります。title / description / albumId の
フォームフィールドは任意で、albumId があればギャラリーへ追記されるのだ。
*/
func (c ImageController) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read image")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	c.save(w, r, header.Filename, data, galleryMeta{
		Title:       title,
		Description: r.FormValue("description"),
		AlbumID:     r.FormValue("albumId"),
	})
}

/*
POST /api/images/base64

生成結果の取り込み用。data URI プレフィックス付きでも受け付けるのだ。
*/
func (c ImageController) IngestBase64(w http.ResponseWriter, r *http.Request) {
	var payload albums.Base64Ingest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	encoded := payload.Data
	if idx := strings.Index(encoded, ";base64,"); idx != -1 {
		encoded = encoded[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid base64 data")
		return
	}

	c.save(w, r, payload.Filename, data, galleryMeta{
		Title:       payload.Title,
		Description: payload.Description,
		AlbumID:     payload.AlbumID,
		Objects:     payload.Objects,
	})
}

func (c ImageController) save(w http.ResponseWriter, r *http.Request, filename string, data []byte, meta galleryMeta) {
	saved, err := c.store.SaveImage(r.Context(), filename, data)
	if err != nil {
		slog.Error("error saving image", "error", err, "filename", filename)
		writeError(w, http.StatusInternalServerError, "could not save image")
		return
	}

	id := strings.TrimSuffix(saved.Filename, filepath.Ext(saved.Filename))
	result := albums.UploadResult{
		ID:           id,
		Filename:     saved.Filename,
		URL:          "/api/images/" + saved.Filename,
		ThumbnailURL: "/api/images/" + saved.ThumbFilename,
	}

	if meta.AlbumID != "" {
		img := domain.GalleryImage{
			ID:           id,
			Title:        meta.Title,
			Description:  meta.Description,
			ImageURL:     result.URL,
			ThumbnailURL: result.ThumbnailURL,
			Filename:     saved.Filename,
			CreatedAt:    time.Now(),
			Objects:      meta.Objects,
		}
		if _, err := c.store.AppendGalleryImage(r.Context(), meta.AlbumID, img); err != nil {
			// 存在しないアルバムでも画像自体の保存は成功扱いにするのだ
			if errors.Is(err, albums.ErrNotFound) {
				slog.Warn("album not found, image saved without gallery append",
					"albumId", meta.AlbumID, "filename", saved.Filename)
			} else {
				slog.Error("error appending to album gallery", "error", err, "albumId", meta.AlbumID)
				writeError(w, http.StatusInternalServerError, "could not update album gallery")
				return
			}
		}
	}

	writeJSON(w, http.StatusCreated, result)
}

/*
GET /api/images/{filename}
*/
func (c ImageController) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := httphelpers.GetFromRequest[string](r, "filename")

	rc, err := c.store.OpenImage(r.Context(), filename)
	if err != nil {
		if errors.Is(err, albums.ErrInvalidFilename) {
			writeError(w, http.StatusBadRequest, "invalid filename")
			return
		}
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeByExt(filename))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("error streaming image", "error", err, "filename", filename)
	}
}

func contentTypeByExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
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
