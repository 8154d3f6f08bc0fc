package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data   map[string]string
	setErr error
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRedisLockSingleHolder(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	a, err := NewRedisLock(store, "edelguur:lock:housekeeping:test", 0)
	require.NoError(t, err)
	b, err := NewRedisLock(store, "edelguur:lock:housekeeping:test", time.Minute)
	require.NoError(t, err)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// b never held it, so its release must leave a's key alone.
	require.NoError(t, b.Release(ctx))
	assert.Contains(t, store.data, "edelguur:lock:housekeeping:test")

	require.NoError(t, a.Release(ctx))
	assert.Empty(t, store.data)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseAfterTakeover(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	l, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)

	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	store.data["k"] = "someone-else"
	require.NoError(t, l.Release(ctx))
	assert.Equal(t, "someone-else", store.data["k"])
}

func TestRedisLockErrors(t *testing.T) {
	_, err := NewRedisLock(nil, "k", 0)
	assert.Error(t, err)
	_, err = NewRedisLock(newMemStore(), "", 0)
	assert.Error(t, err)

	store := newMemStore()
	store.setErr = errors.New("conn refused")
	l, err := NewRedisLock(store, "k", 0)
	require.NoError(t, err)
	_, err = l.Acquire(context.Background())
	assert.ErrorIs(t, err, store.setErr)
}
