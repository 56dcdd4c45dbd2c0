package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chefbot/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "chefbot:session:"

// RedisStore Redis 對話儲存
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 儲存
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 取得對話
func (s *RedisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var conv Conversation
	if err := common.ParseJSONBytes(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &conv, nil
}

// Save 保存對話並刷新存活時間
func (s *RedisStore) Save(ctx context.Context, conv *Conversation) error {
	data, err := common.ToJSON(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+conv.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete 刪除對話；不存在時回傳 ErrNotFound
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 連線由建立者關閉
func (s *RedisStore) Close() error {
	return nil
}
