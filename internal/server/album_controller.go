package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/shouni/go-reve-kit/pkg/albums"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

// AlbumStorer はアルバムコントローラーが必要とする永続化操作です。
// albums.Store がこれを満たします。
type AlbumStorer interface {
	List() []domain.Album
	Get(id string) (domain.Album, error)
	Create(ctx context.Context, title string) (domain.Album, error)
	Update(ctx context.Context, id string, update domain.AlbumUpdate) (domain.Album, error)
	Delete(ctx context.Context, id string) error
	AppendGalleryImage(ctx context.Context, id string, img domain.GalleryImage) (domain.Album, error)
	SaveImage(ctx context.Context, originalName string, data []byte) (albums.SavedImage, error)
	OpenImage(ctx context.Context, filename string) (io.ReadCloser, error)
}

type AlbumControllerConfig struct {
	Store AlbumStorer
}

type AlbumController struct {
	store AlbumStorer
}

func NewAlbumController(config AlbumControllerConfig) AlbumController {
	return AlbumController{
		store: config.Store,
	}
}

/*
GET /api/albums
*/
func (c AlbumController) ListAlbums(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.store.List())
}

/*
POST /api/albums
*/
func (c AlbumController) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	album, err := c.store.Create(r.Context(), payload.Title)
	if err != nil {
		slog.Error("error creating album", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create album")
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

/*
GET /api/albums/{id}
*/
func (c AlbumController) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")

	album, err := c.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	writeJSON(w, http.StatusOK, album)
}

/*
PUT /api/albums/{id}

ボディに含まれるフィールドだけを差し替える部分更新なのだ。
*/
func (c AlbumController) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")

	var update domain.AlbumUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	album, err := c.store.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, albums.ErrNotFound) {
			writeError(w, http.StatusNotFound, "album not found")
			return
		}
		slog.Error("error updating album", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not update album")
		return
	}

	writeJSON(w, http.StatusOK, album)
}

/*
DELETE /api/albums/{id}
*/
func (c AlbumController) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")

	if err := c.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, albums.ErrNotFound) {
			writeError(w, http.StatusNotFound, "album not found")
			return
		}
		slog.Error("error deleting album", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete album")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
