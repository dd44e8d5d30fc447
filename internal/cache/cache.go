package cache

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
)

type jsonStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	CacheKey(parts ...string) string
}

// ReadThrough caches upstream reads in Redis. A nil store or a non-positive
// ttl turns it into a pass-through; cache failures never fail the read.
type ReadThrough struct {
	store   jsonStore
	ttl     time.Duration
	logg    *logger.Logger
	refresh bool
}

func New(store jsonStore, ttl time.Duration, logg *logger.Logger) *ReadThrough {
	return &ReadThrough{store: store, ttl: ttl, logg: logg}
}

// Refresher returns a view of the same cache that skips reads and always
// overwrites the stored value with a fresh load.
func (r *ReadThrough) Refresher() *ReadThrough {
	if r == nil {
		return nil
	}
	clone := *r
	clone.refresh = true
	return &clone
}

func (r *ReadThrough) enabled() bool {
	return r != nil && r.store != nil && r.ttl > 0
}

// Get returns the cached value under key, or calls load and caches its result.
func Get[T any](ctx context.Context, r *ReadThrough, key []string, load func(context.Context) (T, error)) (T, error) {
	if !r.enabled() {
		return load(ctx)
	}

	cacheKey := r.store.CacheKey(key...)
	if !r.refresh {
		var cached T
		found, err := r.store.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			r.warn(ctx, cacheKey, "cache.read_failed", err)
		} else if found {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := r.store.SetJSON(ctx, cacheKey, value, r.ttl); err != nil {
		r.warn(ctx, cacheKey, "cache.write_failed", err)
	}
	return value, nil
}

func (r *ReadThrough) warn(ctx context.Context, key, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
		"cache_key": key,
		"error":     err.Error(),
	}), msg)
}
