package generator

import (
	"context"
	"fmt"
	"sync"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// AssetManager は参照画像を File API へアップロードする契約です。
// gemini-image-kit の GeminiImageCore がこれを満たします。
type AssetManager interface {
	UploadFile(ctx context.Context, referenceURL string) (string, error)
}

// ImageEngine は画像生成エンジン（アダプター）への契約です。
// gemini-image-kit の GeminiGenerator がこれを満たします。複数参照画像と
// システムプロンプトを受け取れるページ生成 API を、スタジオの全編集の入口として使うのだ。
type ImageEngine interface {
	GenerateMangaPage(ctx context.Context, req imagedom.ImagePageRequest) (*imagedom.ImageResponse, error)
}

// StudioComposer は画像生成エンジンと File API アセット管理をまとめた司令塔です。
// 同じ参照画像を何度もアップロードしないよう、URL -> File API URI の
// 対応を singleflight 付きのマップで共有します。
type StudioComposer struct {
	AssetManager AssetManager
	Engine       ImageEngine
	RateLimiter  *rate.Limiter

	resourceMap map[string]string // 参照URL -> File API URI
	mu          sync.RWMutex
	uploadGroup singleflight.Group
}

// NewStudioComposer は StudioComposer の新しいインスタンスを生成します。
func NewStudioComposer(assetMgr AssetManager, engine ImageEngine, limiter *rate.Limiter) *StudioComposer {
	return &StudioComposer{
		AssetManager: assetMgr,
		Engine:       engine,
		RateLimiter:  limiter,
		resourceMap:  make(map[string]string),
	}
}

// EnsureAsset は参照URLを File API にアップロードし、URI を返します。
// すでにアップロード済みならキャッシュされた URI を返すのだ。
func (sc *StudioComposer) EnsureAsset(ctx context.Context, referenceURL string) (string, error) {
	sc.mu.RLock()
	uri, ok := sc.resourceMap[referenceURL]
	sc.mu.RUnlock()
	if ok {
		return uri, nil
	}

	val, err, _ := sc.uploadGroup.Do(referenceURL, func() (interface{}, error) {
		// singleflight 待機中に別ゴルーチンが完了している可能性があるため再確認
		sc.mu.RLock()
		existing, ok := sc.resourceMap[referenceURL]
		sc.mu.RUnlock()
		if ok {
			return existing, nil
		}

		uploaded, uploadErr := sc.AssetManager.UploadFile(ctx, referenceURL)
		if uploadErr != nil {
			return nil, uploadErr
		}

		sc.mu.Lock()
		sc.resourceMap[referenceURL] = uploaded
		sc.mu.Unlock()

		return uploaded, nil
	})
	if err != nil {
		return "", fmt.Errorf("アセットのアップロードに失敗しました (%s): %w", referenceURL, err)
	}

	uri, ok = val.(string)
	if !ok {
		return "", fmt.Errorf("singleflight から予期しない型が返りました: %T", val)
	}
	return uri, nil
}

// PrepareAssets は複数の参照URLを並列にアップロードし、入力と同じ順序で URI を返します。
func (sc *StudioComposer) PrepareAssets(ctx context.Context, referenceURLs []string) ([]string, error) {
	uris := make([]string, len(referenceURLs))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, url := range referenceURLs {
		i, url := i, url
		eg.Go(func() error {
			uri, err := sc.EnsureAsset(egCtx, url)
			if err != nil {
				return err
			}
			uris[i] = uri
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}
