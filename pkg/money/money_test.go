package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":        "৳0.00",
		"5":        "৳5.00",
		"999.999":  "৳1,000.00",
		"1234.5":   "৳1,234.50",
		"1234567":  "৳1,234,567.00",
		"-2500.25": "-৳2,500.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.NewFromInt(100), 4)
	assert.True(t, got.Equal(decimal.NewFromInt(400)))
}

func TestDiscountPercent(t *testing.T) {
	got := DiscountPercent(decimal.NewFromInt(200), decimal.NewFromInt(150))
	assert.True(t, got.Equal(decimal.NewFromInt(25)), got.String())
	assert.True(t, DiscountPercent(decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestSaleFor(t *testing.T) {
	sale := SaleFor(decimal.NewFromInt(120), decimal.NewFromInt(100))
	assert.True(t, sale.OnSale)
	assert.Equal(t, "৳100.00", sale.CompareAt)
	assert.Equal(t, "20", sale.DiscountPercent)

	assert.False(t, SaleFor(decimal.NewFromInt(100), decimal.Zero).OnSale)
	assert.False(t, SaleFor(decimal.NewFromInt(100), decimal.NewFromInt(150)).OnSale)
	assert.False(t, SaleFor(decimal.NewFromInt(100), decimal.NewFromInt(100)).OnSale)
}
