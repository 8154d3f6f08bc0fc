package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	accessID := "access-123"
	token, err := manager.Generate(ctx, accessID, 9)
	require.NoError(t, err)
	assert.Contains(t, store.data[store.AccessSessionKey(accessID)], token)

	_, _, err = manager.Rotate(ctx, accessID, 9, "wrong")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, _, err = manager.Rotate(ctx, accessID, 10, token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "token must stay bound to its user")

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, 9, token)
	require.NoError(t, err)
	assert.NotEqual(t, accessID, newAccessID)
	assert.NotContains(t, store.data, store.AccessSessionKey(accessID))
	assert.Contains(t, store.data[store.AccessSessionKey(newAccessID)], newToken)

	_, _, err = manager.Rotate(ctx, accessID, 9, token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "old session is single use")
}

func TestManagerHasSessionAndRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	ok, err := manager.HasSession(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = manager.Generate(ctx, "live", 1)
	require.NoError(t, err)
	ok, err = manager.HasSession(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, manager.Revoke(ctx, "live"))
	ok, err = manager.HasSession(ctx, "live")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerGenerateValidatesInput(t *testing.T) {
	manager, _ := newTestManager()
	_, err := manager.Generate(context.Background(), " ", 1)
	assert.Error(t, err)
	_, err = manager.Generate(context.Background(), "id", 0)
	assert.Error(t, err)
}

func TestManagerHasSessionSurfacesStoreErrors(t *testing.T) {
	manager := &Manager{store: failingStore{}, keyer: newMockStore(), ttl: time.Hour}
	_, err := manager.HasSession(context.Background(), "id")
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) Set(context.Context, string, any, time.Duration) error {
	return errors.New("down")
}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("down")
}

func (failingStore) Del(context.Context, ...string) error {
	return errors.New("down")
}

func TestManagerRotateRejectsCorruptEntry(t *testing.T) {
	manager, store := newTestManager()
	store.data[store.AccessSessionKey("broken")] = "{not json"

	_, _, err := manager.Rotate(context.Background(), "broken", 1, "anything")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerRotateSurfacesStoreErrors(t *testing.T) {
	manager := &Manager{store: failingStore{}, keyer: newMockStore(), ttl: time.Hour}
	_, _, err := manager.Rotate(context.Background(), "id", 1, "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
}
