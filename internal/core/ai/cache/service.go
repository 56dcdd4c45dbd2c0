package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chefbot/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "chefbot:prompt:"

// RedisService Redis 緩存服務，多個實例可共用翻譯結果
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisService 創建 Redis 緩存服務；client 由呼叫端管理
func NewRedisService(client *redis.Client, ttl time.Duration) *RedisService {
	return &RedisService{
		client: client,
		ttl:    ttl,
	}
}

// Get 獲取緩存
func (s *RedisService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+hashKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("prompt.redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("prompt.redis")
	return val, nil
}

// Set 設置緩存
func (s *RedisService) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+hashKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 連線由建立者關閉
func (s *RedisService) Close() error {
	return nil
}
