package enums

// CartEventKind names a change emitted by the cart store.
type CartEventKind string

const (
	CartEventLineAdded       CartEventKind = "line_added"
	CartEventQuantityChanged CartEventKind = "quantity_changed"
	CartEventLineRemoved     CartEventKind = "line_removed"
	CartEventPriceChanged    CartEventKind = "price_changed"
	CartEventCleared         CartEventKind = "cleared"
)

// String implements fmt.Stringer.
func (k CartEventKind) String() string {
	return string(k)
}

// LineRemovalReason explains why a line left the cart.
type LineRemovalReason string

const (
	LineRemovalUser               LineRemovalReason = "user"
	LineRemovalProductUnavailable LineRemovalReason = "product_unavailable"
)

var validLineRemovalReasons = []LineRemovalReason{
	LineRemovalUser,
	LineRemovalProductUnavailable,
}

// String implements fmt.Stringer.
func (r LineRemovalReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known LineRemovalReason.
func (r LineRemovalReason) IsValid() bool {
	for _, candidate := range validLineRemovalReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
