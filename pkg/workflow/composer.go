package workflow

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-reve-kit/pkg/generator"
	"golang.org/x/time/rate"

	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const defaultRateBurst = 2

// buildStudioComposer 提供された構成と依存関係を使用して StudioComposer インスタンスを初期化し、返します。
func (m *Manager) buildStudioComposer() (*generator.StudioComposer, error) {
	core, err := initializeCore(m.reader, m.httpClient, m.aiClient)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	imageGenerator, err := imagekit.NewGeminiGenerator(m.cfg.ImageModel, core)
	if err != nil {
		return nil, fmt.Errorf("ImageGeneratorの初期化に失敗しました: %w", err)
	}

	return generator.NewStudioComposer(
		core,
		imageGenerator,
		rate.NewLimiter(rate.Every(m.cfg.RateInterval), defaultRateBurst),
	), nil
}

// initializeCore 提供された依存関係で構成された GeminiImageCore インスタンスを初期化して返します。
func initializeCore(reader remoteio.InputReader, httpClient httpkit.ClientInterface, aiClient gemini.GenerativeModel) (*imagekit.GeminiImageCore, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		reader,
		httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	return core, nil
}
