package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront/internal/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"golang.org/x/sync/errgroup"
)

const defaultProductStatus = "active"

type upstream interface {
	ListProducts(ctx context.Context, q storefront.ProductQuery) ([]storefront.Product, *storefront.Pagination, error)
	ProductBySlug(ctx context.Context, slug string) (*storefront.Product, error)
	ProductByID(ctx context.Context, id int64) (*storefront.Product, error)
	ProductImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error)
	Variations(ctx context.Context, productID int64) ([]storefront.Variation, error)
	VariationByID(ctx context.Context, id int64) (*storefront.Variation, error)
	Categories(ctx context.Context) ([]storefront.Category, error)
	SubCategories(ctx context.Context, parentID int64) ([]storefront.Category, error)
	CategoryByName(ctx context.Context, name string) (*storefront.Category, error)
	HomeSections(ctx context.Context) ([]storefront.HomeSection, error)
	SectionProducts(ctx context.Context, sectionID int64) ([]storefront.SectionProduct, error)
	ShippingZones(ctx context.Context) ([]storefront.ShippingZone, error)
	DeliveryMethods(ctx context.Context) ([]storefront.DeliveryMethod, error)
	PaymentMethods(ctx context.Context) ([]storefront.PaymentMethod, error)
}

// Service exposes read-only catalog data.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	ProductByID(ctx context.Context, id int64) (*ProductDetail, error)
	Variations(ctx context.Context, productID int64) ([]VariationView, error)
	Variation(ctx context.Context, id int64) (*VariationView, error)
	VariationImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error)
	Categories(ctx context.Context) ([]CategoryView, error)
	SubCategories(ctx context.Context, parentID int64) ([]CategoryView, error)
	CategoryByName(ctx context.Context, name string) (*CategoryView, error)
	HomeSections(ctx context.Context) ([]HomeSectionView, error)
	ShippingZones(ctx context.Context) ([]ShippingZoneView, error)
	DeliveryMethods(ctx context.Context) ([]DeliveryMethodView, error)
	PaymentMethods(ctx context.Context) ([]PaymentMethodView, error)
}

type service struct {
	client upstream
	cache  *cache.ReadThrough
}

// NewService builds the catalog service. A nil cache disables caching.
func NewService(client upstream, readThrough *cache.ReadThrough) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	return &service{client: client, cache: readThrough}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	params := filter.Params.Normalize()

	categoryID := filter.CategoryID
	if categoryID == 0 && strings.TrimSpace(filter.Category) != "" {
		category, err := s.CategoryByName(ctx, filter.Category)
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
	}

	filters := map[string]string{}
	if categoryID > 0 {
		filters["CategoryId"] = strconv.FormatInt(categoryID, 10)
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		filters["Title"] = title
	}
	status := strings.TrimSpace(filter.Status)
	if status == "" {
		status = defaultProductStatus
	}
	filters["Status"] = status

	key := []string{
		"products",
		"page=" + strconv.Itoa(params.Page),
		"limit=" + strconv.Itoa(params.Limit),
		"category=" + strconv.FormatInt(categoryID, 10),
		"title=" + strings.ToLower(filters["Title"]),
		"status=" + status,
	}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (*ProductPage, error) {
		products, page, err := s.client.ListProducts(ctx, storefront.ProductQuery{
			Page:    params.Page,
			Limit:   params.Limit,
			Filters: filters,
		})
		if err != nil {
			return nil, err
		}
		items := make([]ProductView, 0, len(products))
		for _, p := range products {
			items = append(items, toProductView(p))
		}
		return &ProductPage{Items: items, Pagination: page.Meta(params, len(items))}, nil
	})
}

func (s *service) ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	trimmed := strings.TrimSpace(slug)
	product, err := cache.Get(ctx, s.cache, []string{"product", "slug=" + trimmed}, func(ctx context.Context) (*storefront.Product, error) {
		return s.client.ProductBySlug(ctx, trimmed)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *product)
}

func (s *service) ProductByID(ctx context.Context, id int64) (*ProductDetail, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := s.client.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.detail(ctx, *product)
}

// detail joins a product with its live variations and the first variation's images.
func (s *service) detail(ctx context.Context, product storefront.Product) (*ProductDetail, error) {
	variations, err := s.Variations(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	detail := &ProductDetail{
		Product:    toProductView(product),
		Variations: variations,
		Images:     []storefront.ProductImage{},
	}
	if len(variations) > 0 {
		images, err := s.VariationImages(ctx, variations[0].ID)
		if err != nil {
			return nil, err
		}
		detail.Images = images
	}
	return detail, nil
}

func (s *service) Variations(ctx context.Context, productID int64) ([]VariationView, error) {
	variations, err := s.client.Variations(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]VariationView, 0, len(variations))
	for _, v := range variations {
		if v.Deleted {
			continue
		}
		out = append(out, toVariationView(v))
	}
	return out, nil
}

func (s *service) Variation(ctx context.Context, id int64) (*VariationView, error) {
	variation, err := s.client.VariationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if variation == nil || variation.Deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variation not found")
	}
	view := toVariationView(*variation)
	return &view, nil
}

func (s *service) VariationImages(ctx context.Context, variationID int64) ([]storefront.ProductImage, error) {
	key := []string{"images", "variation=" + strconv.FormatInt(variationID, 10)}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) ([]storefront.ProductImage, error) {
		return s.client.ProductImages(ctx, variationID)
	})
}

func (s *service) Categories(ctx context.Context) ([]CategoryView, error) {
	return cache.Get(ctx, s.cache, []string{"categories"}, func(ctx context.Context) ([]CategoryView, error) {
		categories, err := s.client.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return mapCategories(categories), nil
	})
}

func (s *service) SubCategories(ctx context.Context, parentID int64) ([]CategoryView, error) {
	key := []string{"categories", "parent=" + strconv.FormatInt(parentID, 10)}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) ([]CategoryView, error) {
		categories, err := s.client.SubCategories(ctx, parentID)
		if err != nil {
			return nil, err
		}
		return mapCategories(categories), nil
	})
}

func (s *service) CategoryByName(ctx context.Context, name string) (*CategoryView, error) {
	trimmed := strings.TrimSpace(name)
	key := []string{"category", "name=" + strings.ToLower(trimmed)}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (*CategoryView, error) {
		category, err := s.client.CategoryByName(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		view := toCategoryView(*category)
		return &view, nil
	})
}

// HomeSections loads every section and its product ids concurrently.
func (s *service) HomeSections(ctx context.Context) ([]HomeSectionView, error) {
	return cache.Get(ctx, s.cache, []string{"home", "sections"}, func(ctx context.Context) ([]HomeSectionView, error) {
		sections, err := s.client.HomeSections(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]HomeSectionView, len(sections))
		group, gctx := errgroup.WithContext(ctx)
		for i, section := range sections {
			views[i] = HomeSectionView{
				ID:          section.ID,
				Title:       section.Title,
				Description: section.Description,
				ViewAllLink: section.ViewAllLink,
				ProductIDs:  []int64{},
			}
			group.Go(func() error {
				products, err := s.client.SectionProducts(gctx, section.ID)
				if err != nil {
					return err
				}
				for _, p := range products {
					views[i].ProductIDs = append(views[i].ProductIDs, p.ProductID)
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		return views, nil
	})
}

func (s *service) ShippingZones(ctx context.Context) ([]ShippingZoneView, error) {
	return cache.Get(ctx, s.cache, []string{"methods", "shipping"}, func(ctx context.Context) ([]ShippingZoneView, error) {
		zones, err := s.client.ShippingZones(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]ShippingZoneView, 0, len(zones))
		for _, z := range zones {
			out = append(out, ShippingZoneView{ID: z.ID, Area: z.Area, Cost: z.Cost, FormattedCost: money.Format(z.Cost), Description: z.Description})
		}
		return out, nil
	})
}

func (s *service) DeliveryMethods(ctx context.Context) ([]DeliveryMethodView, error) {
	return cache.Get(ctx, s.cache, []string{"methods", "delivery"}, func(ctx context.Context) ([]DeliveryMethodView, error) {
		methods, err := s.client.DeliveryMethods(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]DeliveryMethodView, 0, len(methods))
		for _, m := range methods {
			out = append(out, DeliveryMethodView{ID: m.ID, Name: m.DeliveryMethod, Cost: m.Cost, FormattedCost: money.Format(m.Cost), Description: m.Description})
		}
		return out, nil
	})
}

func (s *service) PaymentMethods(ctx context.Context) ([]PaymentMethodView, error) {
	return cache.Get(ctx, s.cache, []string{"methods", "payment"}, func(ctx context.Context) ([]PaymentMethodView, error) {
		methods, err := s.client.PaymentMethods(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]PaymentMethodView, 0, len(methods))
		for _, m := range methods {
			out = append(out, PaymentMethodView{ID: m.ID, Name: m.PaymentMethod, Description: m.Description})
		}
		return out, nil
	})
}

func mapCategories(categories []storefront.Category) []CategoryView {
	out := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryView(c))
	}
	return out
}
