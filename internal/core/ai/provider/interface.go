package provider

import (
	"context"
)

// TextRequest 表示文字生成請求
type TextRequest struct {
	Model       string
	Prompt      string
	Temperature *float64 // nil 使用模型預設值
}

// ImageRequest 表示圖片生成請求
type ImageRequest struct {
	Model  string
	Prompt string
}

// Image 表示模型回傳的圖片
type Image struct {
	MIMEType string
	Data     []byte
}

// TextGenerator 定義文字生成介面
type TextGenerator interface {
	// GenerateText 生成文字；回傳空字串時必須同時回傳錯誤
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenerator 定義圖片生成介面
type ImageGenerator interface {
	// GenerateImage 生成圖片；沒有圖片資料時回傳 common.ErrNoImageData
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// Generator 定義 AI 提供者介面
type Generator interface {
	TextGenerator
	ImageGenerator

	// Name 提供者名稱
	Name() string

	// Close 關閉提供者連接
	Close() error
}
