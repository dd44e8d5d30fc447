package cartdto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/money"
)

// CartView is the reconciled cart returned by every cart endpoint.
type CartView struct {
	Lines             []CartLine      `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FormattedSubtotal string          `json:"formatted_subtotal"`
	ItemCount         int             `json:"item_count"`
	Notices           []CartNotice    `json:"notices,omitempty"`
}

// CartLine joins a stored line with the resolved product details.
type CartLine struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         int64           `json:"product_id"`
	VariationID       int64           `json:"variation_id"`
	Quantity          int             `json:"quantity"`
	Title             string          `json:"title,omitempty"`
	Slug              string          `json:"slug,omitempty"`
	ChoiceName        string          `json:"choice_name,omitempty"`
	ImageURL          string          `json:"image_url,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	FormattedPrice    string          `json:"formatted_price,omitempty"`
	Sale              money.Sale      `json:"sale"`
	Stock             int             `json:"stock"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FormattedSubtotal string          `json:"formatted_subtotal,omitempty"`
	Resolved          bool            `json:"resolved"`
}

// CartNotice reports a line the server removed on the visitor's behalf.
type CartNotice struct {
	LineID      uuid.UUID `json:"line_id"`
	VariationID int64     `json:"variation_id"`
	Reason      string    `json:"reason"`
	Message     string    `json:"message"`
}
