package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStore_Unreachable(t *testing.T) {
	store, err := NewRedisStore(context.Background(), RedisConfig{
		Address:     "invalid:address:123",
		DialTimeout: time.Second,
	})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewRedisStoreFromClient_Defaults(t *testing.T) {
	store := NewRedisStoreFromClient(nil, "", "", 0)
	assert.NotEmpty(t, store.SessionID())
	assert.Equal(t, "settingkit:"+store.SessionID(), store.Key())

	other := NewRedisStoreFromClient(nil, "app", "fixed", 0)
	assert.Equal(t, "app:fixed", other.Key())
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := getTestRedisStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "count", 3))
	require.NoError(t, store.Set(ctx, "name", "out"))

	v, ok, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(3), v)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "name"}, keys)

	require.NoError(t, store.Delete(ctx, "count"))
	_, ok, err = store.Get(ctx, "count")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_UndecodableFieldIsAbsent(t *testing.T) {
	store := getTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.client.HSet(ctx, store.Key(), "broken", "{not json").Err())
	require.NoError(t, store.Set(ctx, "count", 3))

	_, ok, err := store.Get(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(3), v)
}

func getTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	store, err := NewRedisStore(context.Background(), RedisConfig{
		Address:     "localhost:6379",
		Database:    1,
		DialTimeout: time.Second,
		Namespace:   "settingkit-test",
		TTL:         time.Minute,
	})
	if err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = store.Close()
	})
	return store
}
