package ai

import (
	"context"
	"testing"

	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders(t *testing.T) {
	assert.Equal(t, []string{config.ProviderGemini, config.ProviderOpenRouter}, Providers())
}

func TestNewGenerator(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Provider = config.ProviderOpenRouter
	cfg.OpenRouter.APIKey = "sk-test"

	gen, err := NewGenerator(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", gen.Name())
	assert.NoError(t, gen.Close())
}

func TestNewGeneratorMissingKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Provider = config.ProviderGemini

	_, err := NewGenerator(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backend.Provider = "llama"

	_, err := NewGenerator(context.Background(), cfg)
	assert.ErrorIs(t, err, common.ErrUnknownProvider)
	assert.Contains(t, err.Error(), "available: gemini, openrouter")
}
