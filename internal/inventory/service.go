package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type catalogClient interface {
	ProductByID(ctx context.Context, id int64) (*storefront.Product, error)
	VariationByID(ctx context.Context, id int64) (*storefront.Variation, error)
	ProductImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error)
}

// Service keeps a visitor's cart consistent with upstream products and stock.
type Service interface {
	Reconcile(ctx context.Context, sessionID string) (*View, error)
	Add(ctx context.Context, sessionID string, input AddInput) (*View, error)
	Increment(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error)
	Decrement(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error)
	SetQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*View, error)
	Remove(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error)
}

type service struct {
	carts       cart.Service
	catalog     catalogClient
	logg        *logger.Logger
	metrics     *metrics.StorefrontMetrics
	concurrency int
}

// ServiceParams groups the dependencies of the inventory service.
type ServiceParams struct {
	Carts       cart.Service
	Catalog     catalogClient
	Logger      *logger.Logger
	Metrics     *metrics.StorefrontMetrics
	Concurrency int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &service{
		carts:       params.Carts,
		catalog:     params.Catalog,
		logg:        params.Logger,
		metrics:     params.Metrics,
		concurrency: concurrency,
	}, nil
}

// AddInput is a request to put a variation in the cart.
type AddInput struct {
	ProductID   int64
	VariationID int64
	Quantity    int
}

// lineDetails is what a single reconciliation fetch learned about one line.
type lineDetails struct {
	line        cart.Line
	product     *storefront.Product
	productOK   bool
	variation   *storefront.Variation
	variationOK bool
	imageURL    string
}

// Reconcile refreshes every line against upstream: lines whose product is gone
// are dropped, and every resolved variation re-prices its line. Fetch failures
// leave the affected line untouched.
func (s *service) Reconcile(ctx context.Context, sessionID string) (*View, error) {
	snap, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(snap.Lines) == 0 {
		return buildView(snap, nil, nil), nil
	}

	details, fetchErr := s.fetchAll(ctx, snap.Lines)
	if fetchErr != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"failed_fetches": len(multierr.Errors(fetchErr)),
			"error":          fetchErr.Error(),
		}), "inventory.reconcile_partial")
	}

	var notices []Notice
	updated, err := s.carts.Update(ctx, sessionID, func(store *cart.Store) error {
		for _, d := range details {
			current, ok := store.Line(d.line.ID)
			if !ok {
				continue
			}
			if (d.productOK && d.product == nil) || (d.variationOK && d.variation == nil) {
				store.SetPriceMap(current.ID, decimal.Zero)
				store.RemoveUnavailable(current.ID)
				notices = append(notices, Notice{
					LineID:      current.ID,
					VariationID: current.VariationID,
					Reason:      enums.LineRemovalProductUnavailable,
					Message:     "This product is no longer available and was removed from your cart.",
				})
				continue
			}
			if d.variationOK {
				store.SetPriceMap(current.ID, money.LineTotal(d.variation.Price, current.Quantity))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildView(updated, indexDetails(details), notices), nil
}

func (s *service) fetchAll(ctx context.Context, lines []cart.Line) ([]lineDetails, error) {
	details := make([]lineDetails, len(lines))
	var (
		mu   sync.Mutex
		errs error
	)
	record := func(err error) {
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
	}

	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for i, line := range lines {
		details[i].line = line
		group.Go(func() error {
			d := &details[i]
			product, err := s.catalog.ProductByID(ctx, line.ProductID)
			if err != nil {
				record(fmt.Errorf("product %d: %w", line.ProductID, err))
			} else {
				d.product, d.productOK = product, true
			}
			variation, err := s.catalog.VariationByID(ctx, line.VariationID)
			if err != nil {
				record(fmt.Errorf("variation %d: %w", line.VariationID, err))
			} else {
				d.variation, d.variationOK = variation, true
			}
			if d.variation != nil {
				if images, err := s.catalog.ProductImages(ctx, line.VariationID); err == nil && len(images) > 0 {
					d.imageURL = images[0].ImageURL
				}
			}
			return nil
		})
	}
	_ = group.Wait()
	return details, errs
}

func (s *service) Add(ctx context.Context, sessionID string, input AddInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	variation, err := s.requireVariation(ctx, input.VariationID)
	if err != nil {
		return nil, err
	}
	if input.ProductID != 0 && variation.ProductID != 0 && variation.ProductID != input.ProductID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation does not belong to product")
	}
	productID := input.ProductID
	if productID == 0 {
		productID = variation.ProductID
	}

	details := map[uuid.UUID]lineDetails{}
	updated, err := s.carts.Update(ctx, sessionID, func(store *cart.Store) error {
		inCart := 0
		if existing, ok := store.LineByVariation(variation.ID); ok {
			inCart = existing.Quantity
		}
		if err := s.checkQuantity(inCart+input.Quantity, variation.Inventory, true); err != nil {
			return err
		}
		line := store.AddToCart(productID, variation.ID, input.Quantity)
		store.SetPriceMap(line.ID, money.LineTotal(variation.Price, line.Quantity))
		details[line.ID] = lineDetails{line: line, variation: variation, variationOK: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(updated, details, nil), nil
}

func (s *service) Increment(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error) {
	return s.adjust(ctx, sessionID, lineID, func(current int) (int, bool) { return current + 1, true })
}

func (s *service) Decrement(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error) {
	return s.adjust(ctx, sessionID, lineID, func(current int) (int, bool) { return current - 1, false })
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*View, error) {
	return s.adjust(ctx, sessionID, lineID, func(int) (int, bool) { return quantity, true })
}

// adjust re-fetches the stock ceiling for the line's variation and applies the
// quantity chosen by next. The store is untouched when the change is rejected.
func (s *service) adjust(ctx context.Context, sessionID string, lineID uuid.UUID, next func(current int) (target int, enforceCeiling bool)) (*View, error) {
	snap, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line, ok := findLine(snap, lineID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	variation, err := s.requireVariation(ctx, line.VariationID)
	if err != nil {
		return nil, err
	}

	details := map[uuid.UUID]lineDetails{}
	updated, err := s.carts.Update(ctx, sessionID, func(store *cart.Store) error {
		current, ok := store.Line(lineID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		target, enforceCeiling := next(current.Quantity)
		if err := s.checkQuantity(target, variation.Inventory, enforceCeiling); err != nil {
			return err
		}
		store.SetQuantity(lineID, target)
		store.SetPriceMap(lineID, money.LineTotal(variation.Price, target))
		current.Quantity = target
		details[lineID] = lineDetails{line: current, variation: variation, variationOK: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(updated, details, nil), nil
}

// checkQuantity is the single validation path for every quantity change.
func (s *service) checkQuantity(target, stock int, enforceCeiling bool) error {
	if target < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": target, "minimum": 1})
	}
	if enforceCeiling && target > stock {
		return s.stockExceeded(stock, target)
	}
	return nil
}

func (s *service) stockExceeded(stock, requested int) error {
	s.metrics.IncStockRejection()
	return pkgerrors.New(pkgerrors.CodeStockExceeded, "Not enough items in stock.").
		WithDetails(map[string]any{"available": stock, "requested": requested})
}

// Remove zeroes the line's price before dropping it.
func (s *service) Remove(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error) {
	updated, err := s.carts.Update(ctx, sessionID, func(store *cart.Store) error {
		if _, ok := store.Line(lineID); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		store.SetPriceMap(lineID, decimal.Zero)
		store.RemoveFromCart(lineID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(updated, nil, nil), nil
}

func (s *service) requireVariation(ctx context.Context, variationID int64) (*storefront.Variation, error) {
	if variationID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation id is required")
	}
	variation, err := s.catalog.VariationByID(ctx, variationID)
	if err != nil {
		return nil, err
	}
	if variation == nil || variation.Deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variation not available")
	}
	return variation, nil
}

func findLine(snap cart.Snapshot, lineID uuid.UUID) (cart.Line, bool) {
	for _, line := range snap.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return cart.Line{}, false
}

func indexDetails(details []lineDetails) map[uuid.UUID]lineDetails {
	out := make(map[uuid.UUID]lineDetails, len(details))
	for _, d := range details {
		out[d.line.ID] = d
	}
	return out
}
