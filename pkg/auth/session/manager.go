// Package session keeps one redis entry per issued access token. The entry
// holds the refresh token and the user it belongs to; deleting it revokes
// the access token and makes the refresh token unusable.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/edelguur/admin-backend/pkg/config"
	redisclient "github.com/edelguur/admin-backend/pkg/redis"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type keyer interface {
	AccessSessionKey(accessID string) string
}

type entry struct {
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

func (e entry) matches(userID int64, token string) bool {
	return e.UserID == userID && subtle.ConstantTimeCompare([]byte(e.RefreshToken), []byte(token)) == 1
}

type Manager struct {
	store kv
	keyer keyer
	ttl   time.Duration
}

// AccessSessionChecker is the read side the auth middleware depends on.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager keeps sessions for the refresh TTL, which has to outlive the
// access token it backs.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	ttl, accessTTL := cfg.RefreshTokenTTL(), cfg.AccessTokenTTL()
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// NewAccessID returns the value used both as the JWT jti and the session key.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, userID int64) (string, error) {
	if blank(accessID) {
		return "", errMissingAccessID
	}
	if userID <= 0 {
		return "", errors.New("user id is required")
	}
	return m.open(ctx, accessID, userID)
}

// Rotate trades a valid (access id, refresh token) pair for a fresh one.
// The old session is removed, so each refresh token works once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID string, userID int64, provided string) (string, string, error) {
	if blank(oldAccessID) || blank(provided) {
		return "", "", ErrInvalidRefreshToken
	}
	current, err := m.lookup(ctx, oldAccessID)
	if err != nil {
		return "", "", err
	}
	if !current.matches(userID, provided) {
		return "", "", ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.open(ctx, accessID, userID)
	if err != nil {
		return "", "", err
	}
	if err := m.Revoke(ctx, oldAccessID); err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) open(ctx context.Context, accessID string, userID int64) (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf[:])

	raw, err := json.Marshal(entry{UserID: userID, RefreshToken: token})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(raw), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// lookup maps a missing or unreadable entry to ErrInvalidRefreshToken.
func (m *Manager) lookup(ctx context.Context, accessID string) (entry, error) {
	var e entry
	raw, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if errors.Is(err, redislib.Nil) {
		return e, ErrInvalidRefreshToken
	}
	if err != nil {
		return e, err
	}
	if json.Unmarshal([]byte(raw), &e) != nil {
		return e, ErrInvalidRefreshToken
	}
	return e, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
