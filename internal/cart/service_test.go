package cart

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (Service, Repository, *prometheus.Registry) {
	t.Helper()
	repository := NewMemoryRepository(time.Hour)
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)
	svc, err := NewService(ServiceParams{
		Repository: repository,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics:    m,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repository, reg
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected repository error")
	}
	if _, err := NewService(ServiceParams{Repository: NewMemoryRepository(0)}); err == nil {
		t.Fatalf("expected logger error")
	}
}

func TestServiceUpdatePersists(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	snap, err := svc.Update(ctx, "sess-1", func(store *Store) error {
		line := store.AddToCart(1, 10, 2)
		store.SetPriceMap(line.ID, decimal.NewFromInt(200))
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(snap.Lines) != 1 || !snap.Subtotal().Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	viewed, err := svc.View(ctx, "sess-1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(viewed.Lines) != 1 || viewed.Lines[0].Quantity != 2 {
		t.Fatalf("cart not persisted: %+v", viewed)
	}

	other, err := svc.View(ctx, "sess-2")
	if err != nil || len(other.Lines) != 0 {
		t.Fatalf("sessions must be isolated, got %+v err=%v", other, err)
	}
}

func TestServiceUpdateErrorDiscardsChanges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := svc.Update(ctx, "sess-1", func(store *Store) error {
		store.AddToCart(1, 10, 1)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	snap, _ := svc.View(ctx, "sess-1")
	if len(snap.Lines) != 0 {
		t.Fatalf("expected no persisted lines, got %+v", snap.Lines)
	}
}

func TestServiceRequiresSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.View(context.Background(), ""); err == nil {
		t.Fatalf("expected session error")
	}
}

func TestServiceConcurrentUpdatesAreSerialised(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Update(ctx, "sess-1", func(store *Store) error {
				store.AddToCart(1, 10, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	snap, _ := svc.View(ctx, "sess-1")
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 20 {
		t.Fatalf("expected 20 coalesced units, got %+v", snap.Lines)
	}
}

func TestServiceCountsUnavailableRemovals(t *testing.T) {
	svc, _, reg := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "sess-1", func(store *Store) error {
		line := store.AddToCart(1, 10, 1)
		store.RemoveUnavailable(line.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := counterValue(t, reg, "cart_line_removals_total", "reason", "product_unavailable"); got != 1 {
		t.Fatalf("expected one unavailable removal, got %v", got)
	}

	if err := svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
