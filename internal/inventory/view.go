package inventory

import (
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is the cart as shown to the visitor after reconciliation.
type View struct {
	Lines     []LineView
	Subtotal  decimal.Decimal
	ItemCount int
	Notices   []Notice
}

// LineView joins a cart line with whatever upstream details were resolved for it.
type LineView struct {
	LineID        uuid.UUID
	ProductID     int64
	VariationID   int64
	Quantity      int
	Title         string
	Slug          string
	ChoiceName    string
	UnitPrice     decimal.Decimal
	Sale          money.Sale
	Stock         int
	ImageURL      string
	Subtotal      decimal.Decimal
	PriceResolved bool
	Resolved      bool
}

// Notice tells the visitor about a change made to their cart without their action.
type Notice struct {
	LineID      uuid.UUID
	VariationID int64
	Reason      enums.LineRemovalReason
	Message     string
}

func buildView(snap cart.Snapshot, details map[uuid.UUID]lineDetails, notices []Notice) *View {
	view := &View{
		Lines:     make([]LineView, 0, len(snap.Lines)),
		Subtotal:  snap.Subtotal(),
		ItemCount: snap.ItemCount(),
		Notices:   notices,
	}
	for _, line := range snap.Lines {
		lv := LineView{
			LineID:      line.ID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
		}
		if amount, ok := snap.Prices[line.ID]; ok {
			lv.Subtotal = amount
			lv.PriceResolved = true
		}
		if d, ok := details[line.ID]; ok {
			if d.product != nil {
				lv.Title = d.product.Title
				lv.Slug = d.product.Slug
			}
			if d.variation != nil {
				lv.ChoiceName = d.variation.ChoiceName
				lv.UnitPrice = d.variation.Price
				lv.Sale = money.SaleFor(d.variation.Price, d.variation.SalesPrice)
				lv.Stock = d.variation.Inventory
				lv.Resolved = true
			}
			lv.ImageURL = d.imageURL
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}
