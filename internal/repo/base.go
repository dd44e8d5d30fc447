package repo

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store persists one JSON document per visitor session.
type Store[T any] interface {
	Load(ctx context.Context, sessionID string) (T, bool, error)
	Save(ctx context.Context, sessionID string, value T) error
	Delete(ctx context.Context, sessionID string) error
}

type jsonStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// KeyFunc maps a session id onto its storage key.
type KeyFunc func(sessionID string) string

// Base provides a shared Redis-backed foundation for session-scoped repositories.
type Base[T any] struct {
	store jsonStore
	key   KeyFunc
	ttl   time.Duration
}

// NewBase constructs a Base repository; every Save refreshes the ttl.
func NewBase[T any](store jsonStore, key KeyFunc, ttl time.Duration) (*Base[T], error) {
	if store == nil {
		return nil, fmt.Errorf("json store required")
	}
	if key == nil {
		return nil, fmt.Errorf("key func required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	return &Base[T]{store: store, key: key, ttl: ttl}, nil
}

func (b *Base[T]) Load(ctx context.Context, sessionID string) (T, bool, error) {
	var value T
	if err := requireSession(sessionID); err != nil {
		return value, false, err
	}
	found, err := b.store.GetJSON(ctx, b.key(sessionID), &value)
	if err != nil {
		return value, false, fmt.Errorf("load %s: %w", b.key(sessionID), err)
	}
	return value, found, nil
}

func (b *Base[T]) Save(ctx context.Context, sessionID string, value T) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := b.store.SetJSON(ctx, b.key(sessionID), value, b.ttl); err != nil {
		return fmt.Errorf("save %s: %w", b.key(sessionID), err)
	}
	return nil
}

func (b *Base[T]) Delete(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	return b.store.Del(ctx, b.key(sessionID))
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return nil
}
