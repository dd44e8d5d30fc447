package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func (c *Client) ShippingZones(ctx context.Context) ([]ShippingZone, error) {
	zones, _, err := getList[ShippingZone](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/shipping-zones",
		endpoint:   "order.shipping_zones",
		idempotent: true,
	})
	return zones, err
}

func (c *Client) DeliveryMethods(ctx context.Context) ([]DeliveryMethod, error) {
	methods, _, err := getList[DeliveryMethod](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/delivery-method",
		endpoint:   "order.delivery_methods",
		idempotent: true,
	})
	return methods, err
}

func (c *Client) PaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	methods, _, err := getList[PaymentMethod](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/payment-methods",
		endpoint:   "order.payment_methods",
		idempotent: true,
	})
	return methods, err
}

// CheckUser reports whether the email may purchase without logging in first.
func (c *Client) CheckUser(ctx context.Context, email string) (bool, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	result, err := getOne[struct {
		CanPurchase bool `json:"canPurchase"`
	}](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/check-user/" + url.PathEscape(trimmed),
		endpoint:   "order.check_user",
		idempotent: true,
	})
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "check-user returned no data")
	}
	return result.CanPurchase, nil
}

// PlaceOrder submits an order exactly once; it is never retried.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	resp, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/storefront-order/place-order",
		endpoint: "order.place",
		body:     req,
	})
	if err != nil {
		return nil, err
	}
	result := &PlaceOrderResult{Message: resp.env.message()}
	var data struct {
		Password string `json:"Password"`
	}
	if _, err := resp.decode(&data); err == nil {
		result.Password = data.Password
	}
	return result, nil
}

// Orders lists the authenticated customer's orders.
func (c *Client) Orders(ctx context.Context, page, limit int) ([]Order, *Pagination, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("Page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("Limit", strconv.Itoa(limit))
	}
	return getList[Order](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/orders",
		endpoint:   "order.list",
		query:      query,
		idempotent: true,
	})
}

func (c *Client) OrderProducts(ctx context.Context, orderID int64) ([]OrderProduct, error) {
	products, _, err := getList[OrderProduct](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-order/" + strconv.FormatInt(orderID, 10) + "/products",
		endpoint:   "order.products",
		idempotent: true,
	})
	return products, err
}
