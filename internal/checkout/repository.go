package checkout

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storefront/internal/repo"
	redisclient "github.com/angelmondragon/storefront/pkg/redis"
)

// Repository persists checkout state per visitor session.
type Repository = repo.Store[State]

func NewRedisRepository(client *redisclient.Client, ttl time.Duration) (Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	base, err := repo.NewBase[State](client, client.CheckoutKey, ttl)
	if err != nil {
		return nil, err
	}
	return base, nil
}

func NewMemoryRepository(ttl time.Duration) Repository {
	return repo.NewMemory[State](ttl)
}
