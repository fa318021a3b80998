package runner

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ImageInput は画像つきプロンプトに添付する 1 枚分の画像データです。
type ImageInput struct {
	Data     []byte
	MimeType string
}

// VisionModel は、画像つきプロンプトからテキスト応答を得る契約です。
// 物体検出と移動指示文の生成で使います。
type VisionModel interface {
	GenerateVisionText(ctx context.Context, prompt string, images []ImageInput) (string, error)
}

// GenaiVisionClient は google.golang.org/genai を直接使う VisionModel 実装なのだ。
// テキスト専用クライアントでは画像を添付できないため、マルチモーダル呼び出しだけ
// この薄いクライアントを経由させます。
type GenaiVisionClient struct {
	client *genai.Client
	model  string
}

// NewGenaiVisionClient は GenaiVisionClient を初期化します。
func NewGenaiVisionClient(ctx context.Context, apiKey, model string) (*GenaiVisionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API キーは必須です")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}

	return &GenaiVisionClient{client: client, model: model}, nil
}

// GenerateVisionText はプロンプトと画像群を 1 つのユーザーコンテンツとして送り、
// テキスト応答を返すのだ。
func (vc *GenaiVisionClient) GenerateVisionText(ctx context.Context, prompt string, images []ImageInput) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := vc.client.Models.GenerateContent(ctx, vc.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("マルチモーダル呼び出しに失敗しました (model: %s): %w", vc.model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("マルチモーダル応答にテキストが含まれていませんでした")
	}
	return text, nil
}
