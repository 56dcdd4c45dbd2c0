package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 20, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	s := NewService(1 << 20)

	uri, err := s.ProcessImage(pngBytes(t, 8, 8))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	data, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	_, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestProcessImageRejects(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		data    []byte
		want    error
	}{
		{"empty", 1 << 20, nil, common.ErrNoImageData},
		{"not an image", 1 << 20, []byte("definitely not an image"), common.ErrInvalidImage},
		{"too large", 16, pngBytes(t, 8, 8), common.ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.maxSize).ProcessImage(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeDataURIRejects(t *testing.T) {
	for _, uri := range []string{"", "https://example.com/a.png", "data:image/png,abc", "data:image/png;base64,@@@"} {
		_, _, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, common.ErrInvalidImage, uri)
	}
}
