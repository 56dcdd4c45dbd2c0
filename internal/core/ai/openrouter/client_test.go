package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chefbot/internal/core/ai/provider"
	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{APIKey: "sk-test", BaseURL: server.URL, MaxTokens: 512})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestGenerateText(t *testing.T) {
	temperature := 0.2
	var got Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Choices: []Choice{{Message: ResponseMessage{Content: "  Namaste  "}}}})
	})

	text, err := client.GenerateText(context.Background(), provider.TextRequest{Model: "m1", Prompt: "hello", Temperature: &temperature})

	require.NoError(t, err)
	assert.Equal(t, "Namaste", text)
	assert.Equal(t, "m1", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-9)
	assert.Equal(t, []Message{{Role: "user", Content: "hello"}}, got.Messages)
}

func TestGenerateTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"empty content", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GenerateText(context.Background(), provider.TextRequest{Model: "m", Prompt: "p"})
			assert.ErrorIs(t, err, common.ErrAIServiceError)
		})
	}
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var got Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Choices: []Choice{{Message: ResponseMessage{
			Images: []ImagePart{
				{Type: "image_url", ImageURL: ImageURL{URL: "https://example.com/x.png"}},
				{Type: "image_url", ImageURL: ImageURL{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)}},
			},
		}}}})
	})

	img, err := client.GenerateImage(context.Background(), provider.ImageRequest{Model: "img", Prompt: "pizza"})

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, []string{"image", "text"}, got.Modalities)
	assert.Nil(t, got.Temperature)
}

func TestGenerateImageNoImages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"sorry"}}]}`))
	})

	_, err := client.GenerateImage(context.Background(), provider.ImageRequest{Model: "img", Prompt: "pizza"})
	assert.ErrorIs(t, err, common.ErrNoImageData)
}

func TestGenerateImageMalformedDataURIs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Choices: []Choice{{Message: ResponseMessage{
			Images: []ImagePart{
				{Type: "image_url", ImageURL: ImageURL{URL: "data:image/png,abc"}},
				{Type: "image_url", ImageURL: ImageURL{URL: "data:image/png;base64,!!!"}},
				{Type: "image_url", ImageURL: ImageURL{URL: "data:image/png;base64,"}},
			},
		}}}})
	})

	_, err := client.GenerateImage(context.Background(), provider.ImageRequest{Model: "img", Prompt: "pizza"})
	assert.ErrorIs(t, err, common.ErrNoImageData)
}
