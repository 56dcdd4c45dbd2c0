// Package image 驗證並正規化模型回傳的食譜圖片
package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"chefbot/internal/pkg/common"

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
	}
}

// ProcessImage 驗證圖片位元組並轉為 JPEG data URI
func (s *Service) ProcessImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.ErrNoImageData
	}

	// 檢查文件大小
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	// 解碼圖片
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("image has no pixels"))
	}

	// 將圖片轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI 解析 data URI，回傳圖片位元組與 MIME 類型
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, "", common.ErrInvalidImage.Wrap(fmt.Errorf("invalid image data format"))
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, "", common.ErrInvalidImage.Wrap(fmt.Errorf("invalid base64 data format"))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return data, strings.TrimSuffix(header, ";base64"), nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
