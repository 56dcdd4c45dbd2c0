package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderGemini, cfg.Backend.Provider)
	assert.Equal(t, 60*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.Backend.RecipeModel)
	assert.InDelta(t, 0.2, cfg.Backend.Temperature, 1e-9)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Telegram.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "logs/app.log", cfg.LogFile.Path)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test-key")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, cfg.Backend.Provider)
	assert.Equal(t, "sk-or-test-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, "google-key", cfg.Gemini.APIKey)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"AI_PROVIDER": "bard"}},
		{"unknown session store", map[string]string{"SESSION_STORE": "mysql"}},
		{"telegram without token", map[string]string{"TELEGRAM_ENABLED": "true"}},
		{"zero timeout", map[string]string{"AI_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...9xyz", MaskAPIKey("sk-or-1234567899xyz"))
}
