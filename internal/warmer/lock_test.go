package warmer

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryLockStore) LockKey(name string) string { return "sf:lock:" + name }

func TestRedisLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "cache_warm", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cache_warm", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, time.Minute, store.ttls["sf:lock:cache_warm"])

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, second.Release(ctx))
	require.Contains(t, store.data, "sf:lock:cache_warm", "non-owner must not release")

	require.NoError(t, first.Release(ctx))
	require.NotContains(t, store.data, "sf:lock:cache_warm")

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisLockLeavesForeignOwner(t *testing.T) {
	store := newMemoryLockStore()
	lock, err := NewRedisLock(store, "cache_warm", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// lock expired and another instance took it over
	store.data["sf:lock:cache_warm"] = "other-instance"
	require.NoError(t, lock.Release(ctx))
	require.Equal(t, "other-instance", store.data["sf:lock:cache_warm"])
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "x", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryLockStore(), "", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryLockStore(), "x", 0)
	require.Error(t, err)
}
