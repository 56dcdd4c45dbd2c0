package session

import (
	"context"
	"testing"
	"time"

	"chefbot/internal/core/chat"
	"chefbot/internal/core/language"
	"chefbot/internal/infrastructure/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConversation() *Conversation {
	conv := NewConversation()
	conv.State = chat.Session{
		Step:      chat.StepRecipeGenerated,
		Language:  language.Tamil,
		Cuisine:   "South Indian",
		Dish:      "Dosa",
		Favorites: []string{"Dosa"},
	}
	conv.Transcript.Append(chat.SenderBot, "Choose language", "")
	conv.Transcript.Append(chat.SenderUser, "Tamil", "")
	return conv
}

// storeContract 兩種儲存共用的行為
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)

	conv := sampleConversation()
	require.NoError(t, store.Save(ctx, conv))

	got, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.State, got.State)
	assert.Equal(t, conv.Transcript.Messages(), got.Transcript.Messages())

	got.State.Favorites = append(got.State.Favorites, "Idli")
	again, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dosa"}, again.State.Favorites)

	require.NoError(t, store.Delete(ctx, conv.ID))
	_, err = store.Get(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	t.Cleanup(func() { _ = store.Close() })
	storeContract(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute, 0)
	t.Cleanup(func() { _ = store.Close() })
	now := time.Now()
	store.now = func() time.Time { return now }

	conv := sampleConversation()
	require.NoError(t, store.Save(context.Background(), conv))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(context.Background(), conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, store.cleanup())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Hour)
	storeContract(t, store)

	conv := sampleConversation()
	require.NoError(t, store.Save(context.Background(), conv))
	assert.True(t, mr.Exists("chefbot:session:"+conv.ID))
	assert.Equal(t, time.Hour, mr.TTL("chefbot:session:"+conv.ID))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(context.Background(), conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session = config.SessionConfig{Store: config.SessionStoreMemory, TTL: time.Hour}

	store, err := NewStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	_ = store.Close()

	cfg.Session.Store = config.SessionStoreRedis
	_, err = NewStore(cfg, nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err = NewStore(cfg, client)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	cfg.Session.Store = "etcd"
	_, err = NewStore(cfg, nil)
	assert.Error(t, err)
}
