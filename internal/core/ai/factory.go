// Package ai 依設定建立生成式 AI 提供者
package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"chefbot/internal/core/ai/gemini"
	"chefbot/internal/core/ai/openrouter"
	"chefbot/internal/core/ai/provider"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// Factory 建立提供者的函式
type Factory func(ctx context.Context, cfg *config.Config) (provider.Generator, error)

var registry = map[string]Factory{
	config.ProviderGemini: func(ctx context.Context, cfg *config.Config) (provider.Generator, error) {
		return gemini.NewClient(ctx, gemini.Options{APIKey: cfg.Gemini.APIKey})
	},
	config.ProviderOpenRouter: func(_ context.Context, cfg *config.Config) (provider.Generator, error) {
		return openrouter.NewClient(openrouter.Options{
			APIKey:    cfg.OpenRouter.APIKey,
			BaseURL:   cfg.OpenRouter.BaseURL,
			MaxTokens: cfg.OpenRouter.MaxTokens,
		})
	},
}

// Providers 回傳已註冊的提供者名稱
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator 依 backend.provider 建立提供者
func NewGenerator(ctx context.Context, cfg *config.Config) (provider.Generator, error) {
	factory, ok := registry[cfg.Backend.Provider]
	if !ok {
		return nil, common.ErrUnknownProvider.Wrap(fmt.Errorf("provider %q, available: %s",
			cfg.Backend.Provider, strings.Join(Providers(), ", ")))
	}

	gen, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Backend.Provider, err)
	}

	common.LogInfo("AI provider initialized",
		zap.String("provider", gen.Name()),
		zap.String("recipe_model", cfg.Backend.RecipeModel),
		zap.String("image_model", cfg.Backend.ImageModel),
	)
	return gen, nil
}
