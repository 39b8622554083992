package cache

import (
	"context"
	"testing"
	"time"

	"food-costing/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMemoryStore(t *testing.T, maxSize int) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(config.SheetsConfig{
		Backend: config.SheetsMemory,
		TTL:     time.Hour,
		MaxSize: maxSize,
	})
	m.now = clock.Now
	t.Cleanup(func() { _ = m.Close() })
	return m, clock
}

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemoryStore(t, 10)

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	value := []byte(`{"id":"a"}`)
	require.NoError(t, m.Set(ctx, "a", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a"}`, string(got), "stored value must be a copy")

	require.NoError(t, m.Delete(ctx, "a"))
	assert.ErrorIs(t, m.Delete(ctx, "a"), ErrMiss)
}

func TestMemoryStore_TTLSlidesOnAccess(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemoryStore(t, 10)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))

	clock.Advance(50 * time.Minute)
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err, "read refreshes the ttl")
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemoryStore(t, 2)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	clock.Advance(time.Minute)
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	clock.Advance(time.Minute)
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	require.NoError(t, m.Set(ctx, "c", []byte("3")))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, m.Stats()["evictions"])
}

func TestMemoryStore_PrefersExpiredOverLRU(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemoryStore(t, 2)

	require.NoError(t, m.Set(ctx, "old", []byte("1")))
	clock.Advance(2 * time.Hour)
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	require.NoError(t, m.Set(ctx, "c", []byte("3")))

	_, err := m.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(&config.Config{Sheets: config.SheetsConfig{Backend: config.SheetsMemory, TTL: time.Hour, MaxSize: 1}})
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open(&config.Config{Sheets: config.SheetsConfig{Backend: "disk"}})
	assert.Error(t, err)
}
