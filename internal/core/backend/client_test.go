package backend

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"chefbot/internal/core/ai/cache"
	"chefbot/internal/core/ai/provider"
	"chefbot/internal/core/chat"
	"chefbot/internal/core/image"
	"chefbot/internal/core/language"
	"chefbot/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	textErr  error
	img      *provider.Image
	imgErr   error
	delay    time.Duration
	textReqs []provider.TextRequest
	imgReqs  []provider.ImageRequest
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	f.mu.Lock()
	f.textReqs = append(f.textReqs, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.Image, error) {
	f.mu.Lock()
	f.imgReqs = append(f.imgReqs, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.img, f.imgErr
}

func (f *fakeGenerator) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func testConfig() config.BackendConfig {
	return config.BackendConfig{
		Timeout:        time.Second,
		TranslateModel: "translate-model",
		RecipeModel:    "recipe-model",
		ImageModel:     "image-model",
		Temperature:    0.2,
	}
}

func newTestClient(gen *fakeGenerator, c cache.Cache) *Client {
	return NewClient(Options{
		Config: testConfig(),
		Text:   gen,
		Image:  gen,
		Images: image.NewService(1 << 20),
		Cache:  c,
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTranslatePrompt(t *testing.T) {
	gen := &fakeGenerator{text: "  पाककृती निवडा  "}
	c := newTestClient(gen, nil)

	got := c.TranslatePrompt(context.Background(), chat.StepCuisine, language.Marathi)

	assert.Equal(t, "पाककृती निवडा", got)
	require.Len(t, gen.textReqs, 1)
	assert.Equal(t, "translate-model", gen.textReqs[0].Model)
	assert.Nil(t, gen.textReqs[0].Temperature)
	assert.Equal(t, `Translate this to Marathi: "Pick a cuisine (e.g., Indian, Chinese, Mexican, Thai, Italian)." Respond with only the translation.`, gen.textReqs[0].Prompt)
}

func TestTranslatePromptFallbacks(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		step chat.Step
		want string
	}{
		{"cuisine error", &fakeGenerator{textErr: errors.New("boom")}, chat.StepCuisine, defaultCuisinePrompt},
		{"dish error", &fakeGenerator{textErr: errors.New("boom")}, chat.StepDish, defaultDishPrompt},
		{"blank result", &fakeGenerator{text: "   "}, chat.StepDish, defaultDishPrompt},
		{"timeout", &fakeGenerator{text: "late", delay: time.Minute}, chat.StepCuisine, defaultCuisinePrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.gen, nil)
			c.cfg.Timeout = 20 * time.Millisecond
			assert.Equal(t, tt.want, c.TranslatePrompt(context.Background(), tt.step, language.Telugu))
		})
	}
}

func TestTranslatePromptLanguageStep(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	c := newTestClient(gen, nil)

	got := c.TranslatePrompt(context.Background(), chat.StepLanguage, language.Default)

	assert.Equal(t, language.ChoicePrompt(), got)
	assert.Empty(t, gen.textReqs)
}

func TestTranslatePromptCached(t *testing.T) {
	gen := &fakeGenerator{text: "Choisissez"}
	m := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 8, TTL: time.Hour})
	t.Cleanup(func() { _ = m.Close() })
	c := newTestClient(gen, m)

	first := c.TranslatePrompt(context.Background(), chat.StepCuisine, language.Hindi)
	second := c.TranslatePrompt(context.Background(), chat.StepCuisine, language.Hindi)
	c.TranslatePrompt(context.Background(), chat.StepDish, language.Hindi)

	assert.Equal(t, first, second)
	assert.Len(t, gen.textReqs, 2)
}

func TestTranslatePromptFailureNotCached(t *testing.T) {
	gen := &fakeGenerator{textErr: errors.New("down")}
	m := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 8, TTL: time.Hour})
	t.Cleanup(func() { _ = m.Close() })
	c := newTestClient(gen, m)

	c.TranslatePrompt(context.Background(), chat.StepCuisine, language.Kannada)
	gen.textErr = nil
	gen.text = "ಪಾಕಪದ್ಧತಿ"

	assert.Equal(t, "ಪಾಕಪದ್ಧತಿ", c.TranslatePrompt(context.Background(), chat.StepCuisine, language.Kannada))
}

func TestGenerateRecipe(t *testing.T) {
	gen := &fakeGenerator{text: "\nPaneer Tikka · Indian\nServings: 2\n"}
	c := newTestClient(gen, nil)

	got := c.GenerateRecipe(context.Background(), language.Hindi, "Indian", "Paneer Tikka")

	assert.Equal(t, "Paneer Tikka · Indian\nServings: 2", got)
	require.Len(t, gen.textReqs, 1)
	req := gen.textReqs[0]
	assert.Equal(t, "recipe-model", req.Model)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.2, *req.Temperature, 1e-9)
	assert.Contains(t, req.Prompt, `Generate a recipe for the dish "Paneer Tikka" from "Indian" cuisine.`)
	assert.Contains(t, req.Prompt, "MUST be in the Hindi language")
	assert.Contains(t, req.Prompt, "Actions: Reply Save to favorite · My favorites to view")
}

func TestGenerateRecipeApology(t *testing.T) {
	for _, gen := range []*fakeGenerator{
		{textErr: errors.New("quota")},
		{text: ""},
		{text: "late", delay: time.Minute},
	} {
		c := newTestClient(gen, nil)
		c.cfg.Timeout = 20 * time.Millisecond
		got := c.GenerateRecipe(context.Background(), language.English, "Thai", "Pad Thai")
		assert.Equal(t, "Sorry, I couldn't generate the recipe for Pad Thai. Please try another dish.", got)
	}
}

func TestGenerateRecipeImage(t *testing.T) {
	gen := &fakeGenerator{img: &provider.Image{MIMEType: "image/png", Data: pngBytes(t)}}
	c := newTestClient(gen, nil)

	got := c.GenerateRecipeImage(context.Background(), "Biryani", "Indian")

	assert.True(t, strings.HasPrefix(got, "data:image/jpeg;base64,"))
	require.Len(t, gen.imgReqs, 1)
	assert.Equal(t, "image-model", gen.imgReqs[0].Model)
	assert.Equal(t, `A clear, appetizing photo of "Biryani", a classic Indian dish. High quality, food photography style.`, gen.imgReqs[0].Prompt)
}

func TestGenerateRecipeImageFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"error", &fakeGenerator{imgErr: errors.New("safety block")}},
		{"nil image", &fakeGenerator{}},
		{"corrupt bytes", &fakeGenerator{img: &provider.Image{MIMEType: "image/png", Data: []byte("garbage")}}},
		{"timeout", &fakeGenerator{delay: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.gen, nil)
			c.cfg.Timeout = 20 * time.Millisecond
			assert.Empty(t, c.GenerateRecipeImage(context.Background(), "Biryani", "Indian"))
		})
	}
}
