package cart

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storefront/internal/repo"
	redisclient "github.com/angelmondragon/storefront/pkg/redis"
)

// Repository persists cart snapshots per visitor session.
type Repository = repo.Store[Snapshot]

// NewRedisRepository stores carts under the session's cart key.
func NewRedisRepository(client *redisclient.Client, ttl time.Duration) (Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	base, err := repo.NewBase[Snapshot](client, client.CartKey, ttl)
	if err != nil {
		return nil, err
	}
	return base, nil
}

// NewMemoryRepository keeps carts in-process; they are lost on restart.
func NewMemoryRepository(ttl time.Duration) Repository {
	return repo.NewMemory[Snapshot](ttl)
}
