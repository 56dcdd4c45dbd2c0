// Package gemini 以 Google GenAI SDK 實作文字與圖片生成
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chefbot/internal/core/ai/provider"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Options Gemini 客戶端設定
type Options struct {
	APIKey string
	// BaseURL 留空時使用 SDK 預設端點
	BaseURL string
}

// Client Gemini API 客戶端
type Client struct {
	client *genai.Client
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Name 提供者名稱
func (c *Client) Name() string {
	return "gemini"
}

// GenerateText 生成文字回應
func (c *Client) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	start := time.Now()
	genCfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		common.LogAICall("gemini.text", time.Since(start), err)
		return "", common.ErrAIServiceError.Wrap(err)
	}

	var sb strings.Builder
	for _, part := range firstParts(resp) {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		err := fmt.Errorf("empty content in response from %s", req.Model)
		common.LogAICall("gemini.text", time.Since(start), err)
		return "", common.ErrAIServiceError.Wrap(err)
	}

	common.LogAICall("gemini.text", time.Since(start), nil)
	return text, nil
}

// GenerateImage 生成圖片，回傳第一個 inline 圖片資料
func (c *Client) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.Image, error) {
	start := time.Now()

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		common.LogAICall("gemini.image", time.Since(start), err)
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	for _, part := range firstParts(resp) {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		common.LogAICall("gemini.image", time.Since(start), nil)
		common.LogDebug("Gemini returned image",
			zap.String("mime_type", part.InlineData.MIMEType),
			zap.Int("bytes", len(part.InlineData.Data)),
		)
		return &provider.Image{
			MIMEType: part.InlineData.MIMEType,
			Data:     part.InlineData.Data,
		}, nil
	}

	common.LogAICall("gemini.image", time.Since(start), common.ErrNoImageData)
	return nil, common.ErrNoImageData
}

// Close 關閉客戶端
func (c *Client) Close() error {
	return nil
}

func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil
	}
	return content.Parts
}
