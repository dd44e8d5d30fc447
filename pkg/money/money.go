// Package money formats storefront amounts and derives sale badges.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "৳"

var hundred = decimal.NewFromInt(100)

// Format renders amount with two decimals and en-US digit grouping, e.g. ৳1,234.50.
func Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + CurrencySymbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// LineTotal is the unit price multiplied by quantity.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// DiscountPercent is (original - discounted) / original * 100. A zero original yields zero.
func DiscountPercent(original, discounted decimal.Decimal) decimal.Decimal {
	if original.IsZero() {
		return decimal.Zero
	}
	return original.Sub(discounted).Div(original).Mul(hundred)
}

// Sale describes the compare-at badge shown next to a variation price.
type Sale struct {
	OnSale          bool   `json:"on_sale"`
	CompareAt       string `json:"compare_at,omitempty"`
	DiscountPercent string `json:"discount_percent,omitempty"`
}

// SaleFor derives the badge for a variation. The compare-at amount is the sales price and the
// badge only shows when it sits below the charged price, mirroring the storefront backend data.
func SaleFor(price, salesPrice decimal.Decimal) Sale {
	if !salesPrice.IsPositive() {
		return Sale{}
	}
	pct := DiscountPercent(salesPrice, price)
	if !pct.IsNegative() {
		return Sale{}
	}
	return Sale{
		OnSale:          true,
		CompareAt:       Format(salesPrice),
		DiscountPercent: pct.Abs().Round(2).String(),
	}
}
