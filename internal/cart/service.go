package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Service loads a visitor's cart, applies a mutation and saves it back.
type Service interface {
	View(ctx context.Context, sessionID string) (Snapshot, error)
	Update(ctx context.Context, sessionID string, fn func(*Store) error) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	repo    Repository
	locks   *repo.Locker
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// ServiceParams groups the dependencies of the cart service.
type ServiceParams struct {
	Repository Repository
	Locker     *repo.Locker
	Logger     *logger.Logger
	Metrics    *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	locks := params.Locker
	if locks == nil {
		locks = repo.NewLocker()
	}
	return &service{
		repo:    params.Repository,
		locks:   locks,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) View(ctx context.Context, sessionID string) (Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "visitor session required")
	}
	store, err := s.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// Update runs fn against the session's cart while holding the session lock.
// Nothing is saved when fn returns an error.
func (s *service) Update(ctx context.Context, sessionID string, fn func(*Store) error) (Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "visitor session required")
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	cancel := store.Subscribe(func(evt Event) { s.observe(ctx, evt) })
	err = fn(store)
	cancel()
	if err != nil {
		return Snapshot{}, err
	}

	snap := store.Snapshot()
	if err := s.repo.Save(ctx, sessionID, snap); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return snap, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	_, err := s.Update(ctx, sessionID, func(store *Store) error {
		store.ClearCart()
		return nil
	})
	return err
}

func (s *service) load(ctx context.Context, sessionID string) (*Store, error) {
	snap, found, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	store := NewStore()
	if found {
		store.Restore(snap)
	}
	return store, nil
}

func (s *service) observe(ctx context.Context, evt Event) {
	switch evt.Kind {
	case enums.CartEventLineRemoved:
		s.metrics.IncLineRemoval(evt.Reason.String())
		if evt.Reason == enums.LineRemovalProductUnavailable {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"line_id":      evt.LineID.String(),
				"variation_id": evt.VariationID,
				"reason":       evt.Reason.String(),
			}), "cart.line_removed")
			return
		}
	case enums.CartEventPriceChanged:
		return
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"event":        evt.Kind.String(),
		"line_id":      evt.LineID.String(),
		"variation_id": evt.VariationID,
		"quantity":     evt.Quantity,
	}), "cart.changed")
}
