package cart

import (
	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront/internal/inventory"
)

func toAddInput(payload cartdto.AddItemRequest) inventory.AddInput {
	quantity := payload.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return inventory.AddInput{
		ProductID:   payload.ProductID,
		VariationID: payload.VariationID,
		Quantity:    quantity,
	}
}
