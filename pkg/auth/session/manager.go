package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	redisclient "github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/google/uuid"
)

type sessionStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Credentials are the upstream login artifacts bound to a visitor session.
type Credentials struct {
	AccessToken string              `json:"access_token"`
	Customer    storefront.Customer `json:"customer"`
	AttachedAt  time.Time           `json:"attached_at"`
}

// Manager keeps upstream credentials server-side, keyed by visitor session id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
	}, nil
}

// Attach stores credentials for the session, replacing any previous login.
func (m *Manager) Attach(ctx context.Context, sessionID string, creds Credentials) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		return fmt.Errorf("access token is required")
	}
	if creds.AttachedAt.IsZero() {
		creds.AttachedAt = time.Now().UTC()
	}
	return m.store.SetJSON(ctx, m.keyer.SessionKey(sessionID), creds, m.ttl)
}

// Credentials returns the stored credentials, or nil when the visitor is anonymous.
func (m *Manager) Credentials(ctx context.Context, sessionID string) (*Credentials, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	var creds Credentials
	found, err := m.store.GetJSON(ctx, m.keyer.SessionKey(sessionID), &creds)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &creds, nil
}

// Detach drops any credentials bound to the session.
func (m *Manager) Detach(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces the identifier used as the cookie jti and Redis key suffix.
func NewSessionID() string {
	return uuid.NewString()
}
