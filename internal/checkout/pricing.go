package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyDefaults selects the first offered method of each kind when nothing,
// or a method no longer offered, is selected.
func ApplyDefaults(state *State, methods Methods) {
	state.ShippingMethodID = defaultID(state.ShippingMethodID, shippingIDs(methods))
	state.DeliveryMethodID = defaultID(state.DeliveryMethodID, deliveryIDs(methods))
	state.PaymentMethodID = defaultID(state.PaymentMethodID, paymentIDs(methods))
}

// Total is the sum of every line price plus the selected shipping and
// delivery costs. Payment methods carry no surcharge.
func Total(prices map[uuid.UUID]decimal.Decimal, methods Methods, state State) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range prices {
		total = total.Add(amount)
	}
	return total.Add(shippingCost(methods, state.ShippingMethodID)).Add(deliveryCost(methods, state.DeliveryMethodID))
}

func shippingCost(methods Methods, id int64) decimal.Decimal {
	for _, m := range methods.Shipping {
		if m.ID == id {
			return m.Cost
		}
	}
	return decimal.Zero
}

func deliveryCost(methods Methods, id int64) decimal.Decimal {
	for _, m := range methods.Delivery {
		if m.ID == id {
			return m.Cost
		}
	}
	return decimal.Zero
}

func defaultID(current int64, offered []int64) int64 {
	if len(offered) == 0 {
		return 0
	}
	for _, id := range offered {
		if id == current {
			return current
		}
	}
	return offered[0]
}

func shippingIDs(methods Methods) []int64 {
	ids := make([]int64, 0, len(methods.Shipping))
	for _, m := range methods.Shipping {
		ids = append(ids, m.ID)
	}
	return ids
}

func deliveryIDs(methods Methods) []int64 {
	ids := make([]int64, 0, len(methods.Delivery))
	for _, m := range methods.Delivery {
		ids = append(ids, m.ID)
	}
	return ids
}

func paymentIDs(methods Methods) []int64 {
	ids := make([]int64, 0, len(methods.Payment))
	for _, m := range methods.Payment {
		ids = append(ids, m.ID)
	}
	return ids
}

func offers(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
