package repo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type doc struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

type fakeJSONStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newFakeJSONStore() *fakeJSONStore {
	return &fakeJSONStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeJSONStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = payload
	f.ttls[key] = ttl
	return nil
}

func (f *fakeJSONStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	payload, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (f *fakeJSONStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func testKey(sessionID string) string { return "doc:" + sessionID }

func TestNewBaseValidatesDependencies(t *testing.T) {
	if _, err := NewBase[doc](nil, testKey, time.Hour); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := NewBase[doc](newFakeJSONStore(), nil, time.Hour); err == nil {
		t.Fatalf("expected key error")
	}
	if _, err := NewBase[doc](newFakeJSONStore(), testKey, 0); err == nil {
		t.Fatalf("expected ttl error")
	}
}

func TestBaseRoundTrip(t *testing.T) {
	store := newFakeJSONStore()
	base, err := NewBase[doc](store, testKey, time.Hour)
	if err != nil {
		t.Fatalf("new base: %v", err)
	}
	ctx := context.Background()

	if _, found, err := base.Load(ctx, "s1"); err != nil || found {
		t.Fatalf("expected empty load, found=%v err=%v", found, err)
	}
	if err := base.Save(ctx, "s1", doc{Items: []string{"a"}, Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.ttls["doc:s1"] != time.Hour {
		t.Fatalf("expected ttl to be applied on save")
	}
	got, found, err := base.Load(ctx, "s1")
	if err != nil || !found || got.Count != 1 || got.Items[0] != "a" {
		t.Fatalf("unexpected load %+v found=%v err=%v", got, found, err)
	}
	if err := base.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := base.Load(ctx, "s1"); found {
		t.Fatalf("expected document gone after delete")
	}
}

func TestBaseRejectsBlankSession(t *testing.T) {
	base, _ := NewBase[doc](newFakeJSONStore(), testKey, time.Hour)
	if err := base.Save(context.Background(), " ", doc{}); err == nil {
		t.Fatalf("expected session id error")
	}
}

func TestBaseWrapsStoreErrors(t *testing.T) {
	store := newFakeJSONStore()
	store.getErr = errors.New("boom")
	base, _ := NewBase[doc](store, testKey, time.Hour)
	if _, _, err := base.Load(context.Background(), "s1"); !errors.Is(err, store.getErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestMemoryCopiesAndExpires(t *testing.T) {
	mem := NewMemory[doc](time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }
	ctx := context.Background()

	value := doc{Items: []string{"a"}}
	if err := mem.Save(ctx, "s1", value); err != nil {
		t.Fatalf("save: %v", err)
	}
	value.Items[0] = "mutated"

	got, found, err := mem.Load(ctx, "s1")
	if err != nil || !found || got.Items[0] != "a" {
		t.Fatalf("expected isolated copy, got %+v found=%v err=%v", got, found, err)
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := mem.Load(ctx, "s1"); found {
		t.Fatalf("expected entry to expire")
	}
}

func TestLockerSerialisesPerKey(t *testing.T) {
	locker := NewLocker()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("s1")
			defer unlock()
			current := counter
			time.Sleep(time.Microsecond)
			counter = current + 1
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("expected 50 serialised increments, got %d", counter)
	}
	if len(locker.locks) != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", len(locker.locks))
	}
}
