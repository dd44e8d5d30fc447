package cart

import (
	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront/internal/inventory"
	"github.com/angelmondragon/storefront/pkg/money"
)

func newCartView(view *inventory.View) cartdto.CartView {
	if view == nil {
		return cartdto.CartView{Lines: []cartdto.CartLine{}}
	}

	lines := make([]cartdto.CartLine, 0, len(view.Lines))
	for _, line := range view.Lines {
		item := cartdto.CartLine{
			ID:          line.LineID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
			Title:       line.Title,
			Slug:        line.Slug,
			ChoiceName:  line.ChoiceName,
			ImageURL:    line.ImageURL,
			UnitPrice:   line.UnitPrice,
			Sale:        line.Sale,
			Stock:       line.Stock,
			Subtotal:    line.Subtotal,
			Resolved:    line.Resolved,
		}
		if line.Resolved {
			item.FormattedPrice = money.Format(line.UnitPrice)
		}
		if line.PriceResolved {
			item.FormattedSubtotal = money.Format(line.Subtotal)
		}
		lines = append(lines, item)
	}

	var notices []cartdto.CartNotice
	for _, n := range view.Notices {
		notices = append(notices, cartdto.CartNotice{
			LineID:      n.LineID,
			VariationID: n.VariationID,
			Reason:      n.Reason.String(),
			Message:     n.Message,
		})
	}

	return cartdto.CartView{
		Lines:             lines,
		Subtotal:          view.Subtotal,
		FormattedSubtotal: money.Format(view.Subtotal),
		ItemCount:         view.ItemCount,
		Notices:           notices,
	}
}
