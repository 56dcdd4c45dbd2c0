package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefbot/internal/api"
	"chefbot/internal/api/telegram"
	"chefbot/internal/core/ai"
	"chefbot/internal/core/ai/cache"
	"chefbot/internal/core/backend"
	"chefbot/internal/core/chat"
	"chefbot/internal/core/conversation"
	"chefbot/internal/core/image"
	"chefbot/internal/core/session"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, common.LogFileOptions{
		Path:       cfg.LogFile.Path,
		MaxSizeMB:  cfg.LogFile.MaxSizeMB,
		MaxBackups: cfg.LogFile.MaxBackups,
		MaxAgeDays: cfg.LogFile.MaxAgeDays,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.Backend.Provider),
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("session_store", cfg.Session.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis 僅在 session 使用 redis 時連線，並同時作為翻譯快取
	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			common.LogFatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer redisClient.Close()
	}

	// 初始化 AI 提供者
	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI provider", zap.Error(err))
	}
	defer generator.Close()

	// 初始化快取
	var promptCache cache.Cache
	switch {
	case !cfg.Cache.Enabled:
		common.LogInfo("Cache disabled")
	case redisClient != nil:
		promptCache = cache.NewRedisService(redisClient, cfg.Cache.TTL)
	default:
		promptCache = cache.NewManager(cfg.Cache)
	}
	if promptCache != nil {
		defer promptCache.Close()
	}

	// 初始化 session 儲存
	store, err := session.NewStore(cfg, redisClient)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	// 組裝對話服務
	recipeBackend := backend.NewClient(backend.Options{
		Config: cfg.Backend,
		Text:   generator,
		Image:  generator,
		Images: image.NewService(cfg.Image.MaxSizeBytes),
		Cache:  promptCache,
	})
	conversations := conversation.NewService(chat.NewMachine(recipeBackend), store)

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Conversations: conversations,
		Store:         store,
		Provider:      generator.Name(),
	})
	srv := api.NewServer(cfg, router)

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 啟動 Telegram bot
	botDone := make(chan struct{})
	if cfg.Telegram.Enabled {
		go func() {
			defer close(botDone)
			runTelegram(ctx, cfg, conversations)
		}()
	} else {
		close(botDone)
	}

	// 等待中斷信號
	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		common.LogWarn("Telegram bot did not stop in time")
	}

	common.LogInfo("Server exited")
}

func runTelegram(ctx context.Context, cfg *config.Config, conversations *conversation.Service) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		common.LogError("Failed to create Telegram bot", zap.Error(err))
		return
	}
	botAPI.Debug = cfg.Telegram.Debug
	common.LogInfo("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.Telegram.PollTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		botAPI.StopReceivingUpdates()
	}()

	bot := telegram.NewBot(botAPI, conversations, telegram.NewQueue(cfg.Telegram.Workers, cfg.Telegram.QueueSize))
	bot.Run(ctx, updates)
}
