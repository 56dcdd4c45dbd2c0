// Package backend 將生成式提供者包裝成對話狀態機使用的後端，所有失敗都轉為後備值
package backend

import (
	"context"
	"errors"
	"strings"

	"chefbot/internal/core/ai/cache"
	"chefbot/internal/core/ai/provider"
	"chefbot/internal/core/chat"
	"chefbot/internal/core/image"
	"chefbot/internal/core/language"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// Client 食譜後端
type Client struct {
	cfg    config.BackendConfig
	text   provider.TextGenerator
	image  provider.ImageGenerator
	images *image.Service
	cache  cache.Cache
}

// Options 後端依賴；Cache 可為 nil
type Options struct {
	Config config.BackendConfig
	Text   provider.TextGenerator
	Image  provider.ImageGenerator
	Images *image.Service
	Cache  cache.Cache
}

var _ chat.Backend = (*Client)(nil)

// NewClient 創建食譜後端
func NewClient(opts Options) *Client {
	return &Client{
		cfg:    opts.Config,
		text:   opts.Text,
		image:  opts.Image,
		images: opts.Images,
		cache:  opts.Cache,
	}
}

// TranslatePrompt 翻譯步驟提示，失敗時回傳英文提示
func (c *Client) TranslatePrompt(ctx context.Context, step chat.Step, lang language.Code) string {
	english, ok := defaultPrompt(step)
	if !ok {
		return language.ChoicePrompt()
	}

	key := string(step) + ":" + string(lang)
	if cached, ok := c.cachedPrompt(ctx, key); ok {
		return cached
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	translated, err := c.text.GenerateText(ctx, provider.TextRequest{
		Model:  c.cfg.TranslateModel,
		Prompt: translatePrompt(language.NameOf(lang), english),
	})
	if err != nil {
		common.LogWarn("Prompt translation failed, using English default",
			zap.String("step", string(step)),
			zap.String("language", string(lang)),
			zap.Bool("timeout", errors.Is(ctx.Err(), context.DeadlineExceeded)),
			zap.Error(err),
		)
		return english
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return english
	}
	c.storePrompt(ctx, key, translated)
	return translated
}

// GenerateRecipe 生成食譜文字，失敗時回傳道歉訊息
func (c *Client) GenerateRecipe(ctx context.Context, lang language.Code, cuisine, dish string) string {
	temperature := c.cfg.Temperature
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	recipe, err := c.text.GenerateText(ctx, provider.TextRequest{
		Model:       c.cfg.RecipeModel,
		Prompt:      recipePrompt(language.NameOf(lang), cuisine, dish),
		Temperature: &temperature,
	})
	recipe = strings.TrimSpace(recipe)
	if err != nil || recipe == "" {
		common.LogWarn("Recipe generation failed",
			zap.String("dish", dish),
			zap.String("cuisine", cuisine),
			zap.Bool("timeout", errors.Is(ctx.Err(), context.DeadlineExceeded)),
			zap.Error(err),
		)
		return recipeApology(dish)
	}
	return recipe
}

// GenerateRecipeImage 生成食譜圖片並回傳 data URI，失敗時回傳空字串
func (c *Client) GenerateRecipeImage(ctx context.Context, dish, cuisine string) string {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	img, err := c.image.GenerateImage(ctx, provider.ImageRequest{
		Model:  c.cfg.ImageModel,
		Prompt: imagePrompt(dish, cuisine),
	})
	if err != nil {
		common.LogWarn("Recipe image generation failed",
			zap.String("dish", dish),
			zap.Bool("timeout", errors.Is(ctx.Err(), context.DeadlineExceeded)),
			zap.Error(err),
		)
		return ""
	}
	if img == nil {
		return ""
	}

	uri, err := c.images.ProcessImage(img.Data)
	if err != nil {
		common.LogWarn("Recipe image rejected",
			zap.String("dish", dish),
			zap.String("mime_type", img.MIMEType),
			zap.Error(err),
		)
		return ""
	}
	return uri
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) cachedPrompt(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	val, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("Prompt cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (c *Client) storePrompt(ctx context.Context, key, value string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value); err != nil {
		common.LogWarn("Prompt cache store failed", zap.String("key", key), zap.Error(err))
	}
}
