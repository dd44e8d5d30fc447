package catalog

import (
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

// ProductView is the public shape of a product.
type ProductView struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	HasVariant  bool   `json:"has_variant"`
	IsActive    bool   `json:"is_active"`
}

// VariationView carries live price and stock; it is never served from cache.
type VariationView struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	ChoiceName     string          `json:"choice_name"`
	Sku            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	SalesPrice     decimal.Decimal `json:"sales_price"`
	FormattedPrice string          `json:"formatted_price"`
	Inventory      int             `json:"inventory"`
	InStock        bool            `json:"in_stock"`
	money.Sale
}

type ProductDetail struct {
	Product    ProductView               `json:"product"`
	Variations []VariationView           `json:"variations"`
	Images     []storefront.ProductImage `json:"images"`
}

type ProductPage struct {
	Items      []ProductView   `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// ProductFilter narrows the product list. Category accepts a category name.
type ProductFilter struct {
	pagination.Params
	CategoryID int64
	Category   string
	Title      string
	Status     string
}

type CategoryView struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
}

type HomeSectionView struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ViewAllLink string  `json:"view_all_link,omitempty"`
	ProductIDs  []int64 `json:"product_ids"`
}

// ShippingZoneView is a shipping area option.
type ShippingZoneView struct {
	ID            int64           `json:"id"`
	Area          string          `json:"area"`
	Cost          decimal.Decimal `json:"cost"`
	FormattedCost string          `json:"formatted_cost"`
	Description   string          `json:"description,omitempty"`
}

type DeliveryMethodView struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	FormattedCost string          `json:"formatted_cost"`
	Description   string          `json:"description,omitempty"`
}

type PaymentMethodView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toProductView(p storefront.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Description: p.Description,
		HasVariant:  p.HasVariant,
		IsActive:    p.IsActive,
	}
}

func toVariationView(v storefront.Variation) VariationView {
	return VariationView{
		ID:             v.ID,
		ProductID:      v.ProductID,
		ChoiceName:     v.ChoiceName,
		Sku:            v.Sku,
		Price:          v.Price,
		SalesPrice:     v.SalesPrice,
		FormattedPrice: money.Format(v.Price),
		Inventory:      v.Inventory,
		InStock:        v.Inventory > 0,
		Sale:           money.SaleFor(v.Price, v.SalesPrice),
	}
}

func toCategoryView(c storefront.Category) CategoryView {
	return CategoryView{ID: c.ID, ParentID: c.ParentCategoryID, Name: c.Name, Icon: c.Icon}
}
