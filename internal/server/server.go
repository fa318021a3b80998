package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
)

// Config はアルバム永続化サービスの起動設定です。
type Config struct {
	Host  string
	Store AlbumStorer
	Debug bool
}

// Routes はコントローラー群から API のルーティング一覧を組み立てるのだ。
func Routes(albumController AlbumController, imageController ImageController) []mux.Route {
	return []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /api/albums", HandlerFunc: albumController.ListAlbums},
		{Path: "POST /api/albums", HandlerFunc: albumController.CreateAlbum},
		{Path: "GET /api/albums/{id}", HandlerFunc: albumController.GetAlbum},
		{Path: "PUT /api/albums/{id}", HandlerFunc: albumController.UpdateAlbum},
		{Path: "DELETE /api/albums/{id}", HandlerFunc: albumController.DeleteAlbum},
		{Path: "POST /api/images/upload", HandlerFunc: imageController.Upload},
		{Path: "POST /api/images/base64", HandlerFunc: imageController.IngestBase64},
		{Path: "GET /api/images/{filename}", HandlerFunc: imageController.ServeImage},
	}
}

// Run はサーバーを起動し、シグナルまたはコンテキストの終了まで待機します。
func Run(ctx context.Context, config Config) error {
	albumController := NewAlbumController(AlbumControllerConfig{Store: config.Store})
	imageController := NewImageController(ImageControllerConfig{Store: config.Store})

	routerConfig := mux.RouterConfig{
		Address:          config.Host,
		Debug:            config.Debug,
		HttpWriteTimeout: 60,
	}

	m := mux.SetupRouter(routerConfig, Routes(albumController, imageController))
	httpServer, quit := mux.SetupServer(routerConfig, m)

	slog.Info("album service started", "host", config.Host)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	mux.Shutdown(httpServer)
	slog.Info("album service stopped")
	return nil
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}
