package storefront

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// ListProducts pages through the store's products.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, *Pagination, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("Page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("Limit", strconv.Itoa(q.Limit))
	}
	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := strings.TrimSpace(q.Filters[key])
		if value == "" {
			continue
		}
		query.Set("filters["+key+"]", value)
	}

	return getList[Product](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/all",
		endpoint:   "products.list",
		query:      query,
		idempotent: true,
	})
}

// ProductBySlug resolves a product page by its slug.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := getOne[Product](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/product/" + url.PathEscape(trimmed),
		endpoint:   "products.by_slug",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	if product == nil || product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// ProductByID returns nil without error when the backend answers with no product.
func (c *Client) ProductByID(ctx context.Context, id int64) (*Product, error) {
	product, err := getOne[Product](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/product-id/" + strconv.FormatInt(id, 10),
		endpoint:   "products.by_id",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	if product == nil || product.ID == 0 {
		return nil, nil
	}
	return product, nil
}

func (c *Client) ProductImages(ctx context.Context, variationID int64) ([]ProductImage, error) {
	images, _, err := getList[ProductImage](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/images/" + strconv.FormatInt(variationID, 10),
		endpoint:   "products.images",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].Order < images[j].Order })
	return images, nil
}

func (c *Client) Variations(ctx context.Context, productID int64) ([]Variation, error) {
	variations, _, err := getList[Variation](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/variations/" + strconv.FormatInt(productID, 10),
		endpoint:   "products.variations",
		idempotent: true,
	})
	return variations, err
}

// VariationByID returns nil without error when the variation no longer exists.
func (c *Client) VariationByID(ctx context.Context, id int64) (*Variation, error) {
	variation, err := getOne[Variation](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-products/variation-id/" + strconv.FormatInt(id, 10),
		endpoint:   "products.variation_by_id",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	if variation == nil || variation.ID == 0 {
		return nil, nil
	}
	return variation, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	categories, _, err := getList[Category](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-categories/all",
		endpoint:   "categories.list",
		idempotent: true,
	})
	return categories, err
}

func (c *Client) SubCategories(ctx context.Context, parentID int64) ([]Category, error) {
	categories, _, err := getList[Category](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-categories/all/" + strconv.FormatInt(parentID, 10),
		endpoint:   "categories.children",
		idempotent: true,
	})
	return categories, err
}

func (c *Client) CategoryByName(ctx context.Context, name string) (*Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category, err := getOne[Category](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-categories/getid/" + url.PathEscape(trimmed),
		endpoint:   "categories.by_name",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	if category == nil || category.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return category, nil
}

func (c *Client) HomeSections(ctx context.Context) ([]HomeSection, error) {
	sections, _, err := getList[HomeSection](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-home/sections",
		endpoint:   "home.sections",
		idempotent: true,
	})
	return sections, err
}

func (c *Client) SectionProducts(ctx context.Context, sectionID int64) ([]SectionProduct, error) {
	products, _, err := getList[SectionProduct](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-home/sectionproducts/" + strconv.FormatInt(sectionID, 10),
		endpoint:   "home.section_products",
		idempotent: true,
	})
	return products, err
}
