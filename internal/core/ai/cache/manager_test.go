package cache

import (
	"context"
	"testing"
	"time"

	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { _ = m.Close() })
	return m, &now
}

func TestManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 4, time.Hour)

	_, err := m.Get(ctx, "cuisine:hi")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "cuisine:hi", "व्यंजन चुनें"))
	val, err := m.Get(ctx, "cuisine:hi")
	require.NoError(t, err)
	assert.Equal(t, "व्यंजन चुनें", val)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 4, time.Minute)

	require.NoError(t, m.Set(ctx, "k", "v"))
	*now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.Stats().Size)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	val, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, 2, m.Stats().Size)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 1, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "a", "2"))

	val, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}
