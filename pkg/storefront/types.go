package storefront

import (
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Pagination mirrors the backend list metadata.
type Pagination struct {
	TotalPages int `json:"TotalPages"`
	Page       int `json:"Page"`
	Limit      int `json:"Limit"`
	TotalItems int `json:"TotalItems"`
}

type Product struct {
	ID          int64  `json:"Id"`
	HasVariant  bool   `json:"HasVariant"`
	CategoryID  int64  `json:"CategoryId"`
	Slug        string `json:"Slug"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Summary     string `json:"Summary"`
	IsActive    bool   `json:"IsActive"`
}

// Variation is a purchasable choice of a product with its own price and stock.
type Variation struct {
	ID         int64           `json:"Id"`
	ProductID  int64           `json:"ProductId"`
	ChoiceName string          `json:"ChoiceName"`
	Price      decimal.Decimal `json:"Price"`
	SalesPrice decimal.Decimal `json:"SalesPrice"`
	Sku        string          `json:"Sku"`
	Inventory  int             `json:"Inventory"`
	Deleted    bool            `json:"Deleted"`
}

type ProductImage struct {
	ID        int64  `json:"Id"`
	ProductID int64  `json:"ProductId"`
	Order     int    `json:"Order"`
	ImageURL  string `json:"ImageUrl"`
}

type Category struct {
	ID               int64  `json:"Id"`
	ParentCategoryID *int64 `json:"ParentCategoryId,omitempty"`
	Name             string `json:"Name"`
	Icon             string `json:"Icon,omitempty"`
}

type HomeSection struct {
	ID          int64  `json:"Id"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	ViewAllLink string `json:"ViewAllLink"`
}

type SectionProduct struct {
	ID        int64 `json:"Id"`
	ProductID int64 `json:"ProductId"`
	SectionID int64 `json:"SectionId"`
}

type HeroImage struct {
	ID        int64  `json:"Id"`
	ImageLink string `json:"ImageLink"`
}

type Footer struct {
	ID          int64  `json:"Id"`
	Description string `json:"Description"`
}

type Page struct {
	ID          int64  `json:"Id"`
	Description string `json:"Description"`
	URL         string `json:"Url"`
}

type Branding struct {
	ID          int64  `json:"Id"`
	LogoLink    string `json:"LogoLink"`
	FaviconLink string `json:"FaviconLink"`
}

type Store struct {
	ID             int64  `json:"Id"`
	StoreName      string `json:"StoreName"`
	StoreCloudName string `json:"StoreCloudName"`
	IsActive       bool   `json:"IsActive"`
	DomainName     string `json:"DomainName"`
	UserID         int64  `json:"UserId"`
	Status         string `json:"Status"`
}

type Turnstile struct {
	ID           int64  `json:"Id"`
	TurnstileKey string `json:"TurnstileKey"`
}

// ShippingZone is a shipping area option with its flat cost.
type ShippingZone struct {
	ID          int64           `json:"Id"`
	Area        string          `json:"Area"`
	Cost        decimal.Decimal `json:"Cost"`
	Description string          `json:"Description"`
}

type DeliveryMethod struct {
	ID             int64           `json:"Id"`
	DeliveryMethod string          `json:"DeliveryMethod"`
	Cost           decimal.Decimal `json:"Cost"`
	Description    string          `json:"Description"`
}

type PaymentMethod struct {
	ID            int64  `json:"Id"`
	PaymentMethod string `json:"PaymentMethod"`
	Description   string `json:"Description"`
}

// Customer is the account record returned alongside a login token.
type Customer struct {
	ID       int64  `json:"Id"`
	FullName string `json:"FullName"`
	Email    string `json:"Email"`
	Phone    string `json:"Phone,omitempty"`
	Address  string `json:"Address,omitempty"`
}

type Order struct {
	ID                  int64           `json:"Id"`
	OrderMethod         string          `json:"OrderMethod"`
	UserID              int64           `json:"UserId"`
	FullName            string          `json:"FullName"`
	Address             string          `json:"Address"`
	Phone               string          `json:"Phone"`
	Email               string          `json:"Email"`
	DeliveryMethod      string          `json:"DeliveryMethod"`
	DeliveryMethodPrice decimal.Decimal `json:"DeliveryMethodPrice"`
	ShippingMethod      string          `json:"ShippingMethod"`
	ShippingMethodPrice decimal.Decimal `json:"ShippingMethodPrice"`
	PaymentType         string          `json:"PaymentType"`
	Status              string          `json:"Status"`
	Note                string          `json:"Note"`
	CreatedAt           string          `json:"CreatedAt"`
}

type OrderProduct struct {
	ID          int64           `json:"Id"`
	StoreKey    string          `json:"StoreKey"`
	UserID      int64           `json:"UserId"`
	OrderID     int64           `json:"OrderId"`
	VariationID int64           `json:"VariationId"`
	Price       decimal.Decimal `json:"Price"`
	Quantity    int             `json:"Quantity"`
}

// OrderLine is one variation/quantity pair in a place-order request.
type OrderLine struct {
	VariationID int64 `json:"VariationId"`
	Quantity    int   `json:"Quantity"`
}

// PlaceOrderRequest is the body accepted by the place-order endpoint.
type PlaceOrderRequest struct {
	FullName          string      `json:"FullName"`
	Address           string      `json:"Address"`
	Email             string      `json:"Email"`
	Phone             string      `json:"Phone"`
	DeliveryMethodID  int64       `json:"DeliveryMethodId"`
	ShippingMethodID  int64       `json:"ShippingMethodId"`
	PaymentMethodID   int64       `json:"PaymentMethodId"`
	Products          []OrderLine `json:"Products"`
	Note              string      `json:"Note,omitempty"`
	TurnstileResponse string      `json:"cf-turnstile-response"`
}

// PlaceOrderResult carries the backend's confirmation. Password is set when
// the backend created an account for a first-time buyer.
type PlaceOrderResult struct {
	Message  string `json:"Message"`
	Password string `json:"Password,omitempty"`
}

type LoginRequest struct {
	Email             string `json:"Email"`
	Password          string `json:"Password"`
	TurnstileResponse string `json:"cf-turnstile-response,omitempty"`
}

type LoginResult struct {
	Token    string
	Customer Customer
	Message  string
}

type RegisterRequest struct {
	FullName          string `json:"FullName"`
	Email             string `json:"Email"`
	Password          string `json:"Password"`
	TurnstileResponse string `json:"cf-turnstile-response,omitempty"`
}

// ProductQuery filters the product list. Filters become filters[Key]=Value.
type ProductQuery struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// Meta converts the backend pagination block, falling back to the requested
// page when the backend omitted it.
func (p *Pagination) Meta(requested pagination.Params, items int) pagination.Meta {
	if p == nil {
		return pagination.Meta{TotalPages: 1, Page: requested.Page, Limit: requested.Limit, TotalItems: items}
	}
	meta := pagination.Meta{TotalPages: p.TotalPages, Page: p.Page, Limit: p.Limit, TotalItems: p.TotalItems}
	if meta.Page == 0 {
		meta.Page = requested.Page
	}
	if meta.Limit == 0 {
		meta.Limit = requested.Limit
	}
	return meta
}
