// Package openrouter 以 OpenRouter chat completions API 實作文字與圖片生成
package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chefbot/internal/core/ai/provider"
	"chefbot/internal/core/image"
	"chefbot/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Options OpenRouter 客戶端設定
type Options struct {
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// Client OpenRouter API 客戶端
type Client struct {
	client    *resty.Client
	maxTokens int
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Modalities  []string  `json:"modalities,omitempty"`
}

// ImageURL 圖片位址
type ImageURL struct {
	URL string `json:"url"`
}

// ImagePart 回應中的圖片
type ImagePart struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

// ResponseMessage 回應消息
type ResponseMessage struct {
	Role    string      `json:"role"`
	Content string      `json:"content"`
	Images  []ImagePart `json:"images,omitempty"`
}

// Choice 選擇結構
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", opts.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "ChefBot")

	return &Client{
		client:    client,
		maxTokens: opts.MaxTokens,
	}, nil
}

// Name 提供者名稱
func (c *Client) Name() string {
	return "openrouter"
}

// GenerateText 生成文字回應
func (c *Client) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	start := time.Now()
	resp, err := c.complete(ctx, &Request{
		Model:       req.Model,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		common.LogAICall("openrouter.text", time.Since(start), err)
		return "", err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		err := common.ErrAIServiceError.Wrap(fmt.Errorf("empty content in response from %s", req.Model))
		common.LogAICall("openrouter.text", time.Since(start), err)
		return "", err
	}

	common.LogAICall("openrouter.text", time.Since(start), nil)
	return content, nil
}

// GenerateImage 生成圖片，圖片以 data URI 形式回傳
func (c *Client) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.Image, error) {
	start := time.Now()

	resp, err := c.complete(ctx, &Request{
		Model:      req.Model,
		Messages:   []Message{{Role: "user", Content: req.Prompt}},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		common.LogAICall("openrouter.image", time.Since(start), err)
		return nil, err
	}

	for _, part := range resp.Choices[0].Message.Images {
		data, mimeType, err := image.DecodeDataURI(part.ImageURL.URL)
		if err != nil || len(data) == 0 {
			common.LogWarn("Skipping undecodable image from OpenRouter", zap.Error(err))
			continue
		}
		common.LogAICall("openrouter.image", time.Since(start), nil)
		return &provider.Image{MIMEType: mimeType, Data: data}, nil
	}

	common.LogAICall("openrouter.image", time.Since(start), common.ErrNoImageData)
	return nil, common.ErrNoImageData
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func (c *Client) complete(ctx context.Context, req *Request) (*Response, error) {
	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Strings("modalities", req.Modalities),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("failed to send request to OpenRouter: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("OpenRouter API returned status %d: %s",
			resp.StatusCode(), common.Truncate(resp.String(), 200)))
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("failed to parse OpenRouter response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("no choices in OpenRouter response"))
	}
	return &result, nil
}
