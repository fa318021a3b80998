package albums

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-reve-kit/pkg/domain"
)

const (
	clientCacheTTL     = 30 * time.Second
	clientCacheCleanup = time.Minute

	listCacheKey     = "albums"
	albumCachePrefix = "album:"
)

// UploadResult はアップロード API の応答です。
type UploadResult struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Base64Ingest は base64 取り込み API のリクエストボディです。
// AlbumID を指定すると、保存された画像がサーバー側でそのアルバムの
// ギャラリー末尾に追記されるのだ。
type Base64Ingest struct {
	Filename    string                   `json:"filename"`
	Data        string                   `json:"data"` // base64 エンコード済みの画像データ
	Title       string                   `json:"title,omitempty"`
	Description string                   `json:"description,omitempty"`
	AlbumID     string                   `json:"albumId,omitempty"`
	Objects     []*domain.DetectedObject `json:"objects,omitempty"`
}

// ImageMeta は multipart アップロードに添えるギャラリー用のメタデータです。
type ImageMeta struct {
	Title       string
	Description string
	AlbumID     string
}

// Client はアルバム永続化サービスへの REST クライアントなのだ。
// 読み取りは短命キャッシュに乗せ、書き込みが起きたら丸ごと無効化します。
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
}

// NewClient はベースURLとタイムアウトを指定してクライアントを作成します。
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(clientCacheTTL, clientCacheCleanup),
	}
}

// List は全アルバムを取得します。
func (c *Client) List(ctx context.Context) ([]domain.Album, error) {
	if cached, ok := c.cache.Get(listCacheKey); ok {
		return cached.([]domain.Album), nil
	}

	var out []domain.Album
	if err := c.do(ctx, http.MethodGet, "/api/albums", nil, "", &out); err != nil {
		return nil, err
	}
	c.cache.SetDefault(listCacheKey, out)
	return out, nil
}

// Get はアルバムを 1 冊取得します。
func (c *Client) Get(ctx context.Context, id string) (domain.Album, error) {
	if cached, ok := c.cache.Get(albumCachePrefix + id); ok {
		return cached.(domain.Album), nil
	}

	var out domain.Album
	if err := c.do(ctx, http.MethodGet, "/api/albums/"+id, nil, "", &out); err != nil {
		return domain.Album{}, err
	}
	c.cache.SetDefault(albumCachePrefix+id, out)
	return out, nil
}

// Create は新しいアルバムを作成します。
func (c *Client) Create(ctx context.Context, title string) (domain.Album, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return domain.Album{}, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	var out domain.Album
	if err := c.do(ctx, http.MethodPost, "/api/albums", bytes.NewReader(body), "application/json", &out); err != nil {
		return domain.Album{}, err
	}
	c.cache.Flush()
	return out, nil
}

// Update は指定フィールドだけを差し替えます。nil のフィールドは送信されません。
func (c *Client) Update(ctx context.Context, id string, update domain.AlbumUpdate) (domain.Album, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return domain.Album{}, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	var out domain.Album
	if err := c.do(ctx, http.MethodPut, "/api/albums/"+id, bytes.NewReader(body), "application/json", &out); err != nil {
		return domain.Album{}, err
	}
	c.cache.Flush()
	return out, nil
}

// Delete はアルバムを削除します。
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/albums/"+id, nil, "", nil); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}

// UploadImage は画像を multipart でアップロードします。
// meta.AlbumID を指定すると、サーバー側でギャラリーへの追記まで行われます。
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte, meta ImageMeta) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("multipartの構築に失敗しました: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("multipartの構築に失敗しました: %w", err)
	}
	fields := map[string]string{
		"title":       meta.Title,
		"description": meta.Description,
		"albumId":     meta.AlbumID,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return UploadResult{}, fmt.Errorf("multipartの構築に失敗しました: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("multipartの構築に失敗しました: %w", err)
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/images/upload", &buf, mw.FormDataContentType(), &out); err != nil {
		return UploadResult{}, err
	}
	if meta.AlbumID != "" {
		c.cache.Flush()
	}
	return out, nil
}

// IngestBase64 は base64 エンコード済みの画像（生成結果など）を取り込ませます。
func (c *Client) IngestBase64(ctx context.Context, req Base64Ingest) (UploadResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/images/base64", bytes.NewReader(body), "application/json", &out); err != nil {
		return UploadResult{}, err
	}
	if req.AlbumID != "" {
		c.cache.Flush()
	}
	return out, nil
}

// FetchImage は画像本体を取得します。url はサービス相対（/api/images/...）でも
// 絶対URLでも受け付けるのだ。
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "/") {
		url = c.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました (%s): %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("画像の取得に失敗しました (%s): %s", url, decodeError(resp))
	}
	return io.ReadAll(resp.Body)
}

// do はリクエストの発行と応答のデコードをまとめた内部ヘルパーなのだ。
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("サービスへの接続に失敗しました (%s %s): %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("サービスがエラーを返しました (%s %s): %s", method, path, decodeError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("応答のデコードに失敗しました (%s %s): %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Sprintf("%s (status %d)", payload.Error, resp.StatusCode)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
