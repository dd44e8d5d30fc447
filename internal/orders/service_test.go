package orders

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu           sync.Mutex
	orders       []storefront.Order
	page, limit  int
	products     map[int64][]storefront.OrderProduct
	variations   map[int64]*storefront.Variation
	variationErr map[int64]error
	catalog      map[int64]*storefront.Product
}

func (s *stubClient) Orders(ctx context.Context, page, limit int) ([]storefront.Order, *storefront.Pagination, error) {
	s.page, s.limit = page, limit
	return s.orders, nil, nil
}

func (s *stubClient) OrderProducts(ctx context.Context, orderID int64) ([]storefront.OrderProduct, error) {
	return s.products[orderID], nil
}

func (s *stubClient) VariationByID(ctx context.Context, id int64) (*storefront.Variation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.variationErr[id]; err != nil {
		return nil, err
	}
	return s.variations[id], nil
}

func (s *stubClient) ProductByID(ctx context.Context, id int64) (*storefront.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog[id], nil
}

func (s *stubClient) ProductImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error) {
	return []storefront.ProductImage{{ImageURL: "https://cdn.test/img.png"}}, nil
}

func loggedIn() context.Context {
	return session.WithCredentials(context.Background(), &session.Credentials{AccessToken: "tok"})
}

func newTestService(t *testing.T, client *stubClient) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Client: client, Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard})})
	require.NoError(t, err)
	return svc
}

func TestListRequiresLogin(t *testing.T) {
	svc := newTestService(t, &stubClient{})

	_, err := svc.List(context.Background(), pagination.Params{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Detail(context.Background(), 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestListNormalizesPaging(t *testing.T) {
	client := &stubClient{orders: []storefront.Order{{ID: 7, Status: "pending", ShippingMethodPrice: decimal.NewFromInt(60)}}}
	svc := newTestService(t, client)

	list, err := svc.List(loggedIn(), pagination.Params{Page: 0, Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, client.page)
	assert.Equal(t, pagination.MaxLimit, client.limit)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "pending", list.Orders[0].Status)
	assert.Equal(t, 1, list.Pagination.TotalItems)
}

func TestDetailEnrichesLinesAndToleratesFailures(t *testing.T) {
	client := &stubClient{
		products: map[int64][]storefront.OrderProduct{
			5: {
				{VariationID: 10, Price: decimal.NewFromInt(100), Quantity: 2},
				{VariationID: 11, Price: decimal.NewFromInt(50), Quantity: 1},
				{VariationID: 12, Price: decimal.NewFromInt(25), Quantity: 4},
			},
		},
		variations: map[int64]*storefront.Variation{
			10: {ID: 10, ProductID: 1, ChoiceName: "Large"},
		},
		variationErr: map[int64]error{12: errors.New("timeout")},
		catalog:      map[int64]*storefront.Product{1: {ID: 1, Title: "Tee", Slug: "tee"}},
	}
	svc := newTestService(t, client)

	detail, err := svc.Detail(loggedIn(), 5)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 3)

	first := detail.Lines[0]
	assert.Equal(t, "Tee", first.Title)
	assert.Equal(t, "Large", first.ChoiceName)
	assert.Equal(t, "https://cdn.test/img.png", first.ImageURL)
	assert.True(t, first.CatalogAvailable)
	assert.True(t, decimal.NewFromInt(200).Equal(first.LineTotal))

	assert.False(t, detail.Lines[1].CatalogAvailable)
	assert.False(t, detail.Lines[2].CatalogAvailable)
	assert.True(t, decimal.NewFromInt(350).Equal(detail.Subtotal))
	assert.Equal(t, "৳350.00", detail.FormattedSubtotal)
}

func TestDetailValidatesOrderID(t *testing.T) {
	svc := newTestService(t, &stubClient{})
	_, err := svc.Detail(loggedIn(), 0)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
