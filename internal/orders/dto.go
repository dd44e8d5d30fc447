package orders

import (
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

// OrderSummary is one order in the customer's history.
type OrderSummary struct {
	ID                  int64           `json:"id"`
	Status              string          `json:"status"`
	FullName            string          `json:"full_name"`
	Address             string          `json:"address"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	DeliveryMethod      string          `json:"delivery_method"`
	DeliveryMethodPrice decimal.Decimal `json:"delivery_method_price"`
	ShippingMethod      string          `json:"shipping_method"`
	ShippingMethodPrice decimal.Decimal `json:"shipping_method_price"`
	PaymentType         string          `json:"payment_type"`
	Note                string          `json:"note,omitempty"`
	CreatedAt           string          `json:"created_at"`
}

// OrderList wraps a page of orders.
type OrderList struct {
	Orders     []OrderSummary  `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// LineView is an ordered variation joined with its catalog details when
// they are still available.
type LineView struct {
	VariationID      int64           `json:"variation_id"`
	ProductID        int64           `json:"product_id,omitempty"`
	Title            string          `json:"title,omitempty"`
	Slug             string          `json:"slug,omitempty"`
	ChoiceName       string          `json:"choice_name,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Quantity         int             `json:"quantity"`
	LineTotal        decimal.Decimal `json:"line_total"`
	FormattedTotal   string          `json:"formatted_total"`
	CatalogAvailable bool            `json:"catalog_available"`
}

type OrderDetail struct {
	OrderID           int64           `json:"order_id"`
	Lines             []LineView      `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FormattedSubtotal string          `json:"formatted_subtotal"`
}

func toSummary(o storefront.Order) OrderSummary {
	return OrderSummary{
		ID:                  o.ID,
		Status:              o.Status,
		FullName:            o.FullName,
		Address:             o.Address,
		Phone:               o.Phone,
		Email:               o.Email,
		DeliveryMethod:      o.DeliveryMethod,
		DeliveryMethodPrice: o.DeliveryMethodPrice,
		ShippingMethod:      o.ShippingMethod,
		ShippingMethodPrice: o.ShippingMethodPrice,
		PaymentType:         o.PaymentType,
		Note:                o.Note,
		CreatedAt:           o.CreatedAt,
	}
}

func newLineView(p storefront.OrderProduct) LineView {
	total := money.LineTotal(p.Price, p.Quantity)
	return LineView{
		VariationID:    p.VariationID,
		UnitPrice:      p.Price,
		Quantity:       p.Quantity,
		LineTotal:      total,
		FormattedTotal: money.Format(total),
	}
}
