package cartdto

// AddItemRequest puts a product variation in the cart.
type AddItemRequest struct {
	ProductID   int64 `json:"product_id" validate:"required,gt=0"`
	VariationID int64 `json:"variation_id" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" validate:"omitempty,gt=0"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}
