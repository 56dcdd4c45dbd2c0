package session

import (
	"context"
	"fmt"
	"time"

	"chefbot/internal/core/chat"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound 找不到對話
var ErrNotFound = common.ErrSessionNotFound

// Conversation 一段對話的狀態與逐字稿
type Conversation struct {
	ID         string       `json:"id"`
	State      chat.Session `json:"state"`
	Transcript *Transcript  `json:"transcript"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewConversation 建立新對話
func NewConversation() *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:         common.GenerateUUID(),
		State:      chat.NewSession(),
		Transcript: NewTranscript(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Store 對話儲存介面
type Store interface {
	Get(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依 session.store 建立儲存；redis 模式下 client 由呼叫端管理
func NewStore(cfg *config.Config, client *redis.Client) (Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(cfg.Session.TTL, cfg.Session.CleanupInterval), nil
	case config.SessionStoreRedis:
		if client == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		return NewRedisStore(client, cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
}
