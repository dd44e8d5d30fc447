package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultEnrichConcurrency = 4

type orderClient interface {
	Orders(ctx context.Context, page, limit int) ([]storefront.Order, *storefront.Pagination, error)
	OrderProducts(ctx context.Context, orderID int64) ([]storefront.OrderProduct, error)
	VariationByID(ctx context.Context, id int64) (*storefront.Variation, error)
	ProductByID(ctx context.Context, id int64) (*storefront.Product, error)
	ProductImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error)
}

// Service reads the logged-in customer's order history.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	Detail(ctx context.Context, orderID int64) (*OrderDetail, error)
}

type service struct {
	client      orderClient
	logg        *logger.Logger
	concurrency int
}

type ServiceParams struct {
	Client      orderClient
	Logger      *logger.Logger
	Concurrency int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &service{client: params.Client, logg: params.Logger, concurrency: concurrency}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	params = params.Normalize()
	orders, page, err := s.client.Orders(ctx, params.Page, params.Limit)
	if err != nil {
		return nil, err
	}
	out := &OrderList{Orders: make([]OrderSummary, 0, len(orders)), Pagination: page.Meta(params, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, toSummary(o))
	}
	return out, nil
}

// Detail lists an order's lines. Catalog details are best effort: a
// variation deleted since the order was placed still shows its price.
func (s *service) Detail(ctx context.Context, orderID int64) (*OrderDetail, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	products, err := s.client.OrderProducts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{OrderID: orderID, Lines: make([]LineView, len(products)), Subtotal: decimal.Zero}
	var (
		mu       sync.Mutex
		fetchErr error
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, p := range products {
		detail.Lines[i] = newLineView(p)
		detail.Subtotal = detail.Subtotal.Add(detail.Lines[i].LineTotal)
		group.Go(func() error {
			if err := s.enrich(gctx, &detail.Lines[i]); err != nil {
				mu.Lock()
				fetchErr = multierr.Append(fetchErr, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()
	if fetchErr != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID,
			"failures": len(multierr.Errors(fetchErr)),
			"error":    fetchErr.Error(),
		}), "orders.enrich_partial")
	}
	detail.FormattedSubtotal = money.Format(detail.Subtotal)
	return detail, nil
}

func (s *service) enrich(ctx context.Context, line *LineView) error {
	variation, err := s.client.VariationByID(ctx, line.VariationID)
	if err != nil {
		return fmt.Errorf("variation %d: %w", line.VariationID, err)
	}
	if variation == nil {
		return nil
	}
	line.ChoiceName = variation.ChoiceName
	line.ProductID = variation.ProductID

	product, err := s.client.ProductByID(ctx, variation.ProductID)
	if err != nil {
		return fmt.Errorf("product %d: %w", variation.ProductID, err)
	}
	if product == nil {
		return nil
	}
	line.Title = product.Title
	line.Slug = product.Slug
	line.CatalogAvailable = true

	images, err := s.client.ProductImages(ctx, line.VariationID)
	if err != nil {
		return fmt.Errorf("images %d: %w", line.VariationID, err)
	}
	if len(images) > 0 {
		line.ImageURL = images[0].ImageURL
	}
	return nil
}

func requireLogin(ctx context.Context) error {
	if session.CredentialsFromContext(ctx) == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to view orders")
	}
	return nil
}
