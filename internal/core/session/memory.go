package session

import (
	"context"
	"sync"
	"time"

	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore 記憶體對話儲存，以序列化副本保存避免共用可變狀態
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// NewMemoryStore 創建記憶體儲存並啟動過期清理
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.startCleanup(cleanupInterval)
	}
	return s
}

// Get 取得對話
func (s *MemoryStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	var conv Conversation
	if err := common.ParseJSONBytes(entry.data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Save 保存對話並刷新存活時間
func (s *MemoryStore) Save(_ context.Context, conv *Conversation) error {
	data, err := common.ToJSON(conv)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conv.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete 刪除對話；不存在時回傳 ErrNotFound
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Ping 記憶體儲存永遠可用
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close 停止清理協程
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.cleanup(); n > 0 {
				common.LogDebug("Expired sessions removed", zap.Int("count", n))
			}
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, id)
			count++
		}
	}
	return count
}
