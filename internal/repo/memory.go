package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory keeps session documents in-process. Values are stored encoded so
// callers never share state with the repository.
type Memory[T any] struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory builds an in-process repository; ttl <= 0 keeps entries forever.
func NewMemory[T any](ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory[T]) Load(ctx context.Context, sessionID string) (T, bool, error) {
	var value T
	if err := requireSession(sessionID); err != nil {
		return value, false, err
	}
	m.mu.Lock()
	entry, ok := m.items[sessionID]
	if ok && !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.items, sessionID)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return value, false, nil
	}
	if err := json.Unmarshal(entry.payload, &value); err != nil {
		return value, false, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return value, true, nil
}

func (m *Memory[T]) Save(ctx context.Context, sessionID string, value T) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	entry := memoryEntry{payload: payload}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[sessionID] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.items, sessionID)
	m.mu.Unlock()
	return nil
}
