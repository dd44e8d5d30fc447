package warmer

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/content"
)

type catalogReader interface {
	Categories(ctx context.Context) ([]catalog.CategoryView, error)
	HomeSections(ctx context.Context) ([]catalog.HomeSectionView, error)
	ShippingZones(ctx context.Context) ([]catalog.ShippingZoneView, error)
	DeliveryMethods(ctx context.Context) ([]catalog.DeliveryMethodView, error)
	PaymentMethods(ctx context.Context) ([]catalog.PaymentMethodView, error)
}

type contentReader interface {
	HeroImages(ctx context.Context) ([]content.HeroImage, error)
	Pages(ctx context.Context) ([]content.Page, error)
	Layout(ctx context.Context) (*content.Layout, error)
}

type readStep struct {
	name string
	run  func(context.Context) error
}

type stepJob struct {
	name  string
	steps []readStep
}

func (j *stepJob) Name() string { return j.name }

// Run attempts every step so one failing read does not leave the rest cold.
func (j *stepJob) Run(ctx context.Context) error {
	var errs error
	for _, step := range j.steps {
		if err := step.run(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	return errs
}

func discard[T any](load func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := load(ctx)
		return err
	}
}

// NewCatalogJob refreshes the navigation and checkout method listings. svc
// should be built over a refreshing cache so every read goes upstream.
func NewCatalogJob(svc catalogReader) (Job, error) {
	if svc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &stepJob{
		name: "catalog",
		steps: []readStep{
			{name: "categories", run: discard(svc.Categories)},
			{name: "home_sections", run: discard(svc.HomeSections)},
			{name: "shipping_zones", run: discard(svc.ShippingZones)},
			{name: "delivery_methods", run: discard(svc.DeliveryMethods)},
			{name: "payment_methods", run: discard(svc.PaymentMethods)},
		},
	}, nil
}

// NewContentJob refreshes the store chrome served on every page.
func NewContentJob(svc contentReader) (Job, error) {
	if svc == nil {
		return nil, fmt.Errorf("content service required")
	}
	return &stepJob{
		name: "content",
		steps: []readStep{
			{name: "layout", run: discard(svc.Layout)},
			{name: "hero_images", run: discard(svc.HeroImages)},
			{name: "pages", run: discard(svc.Pages)},
		},
	}, nil
}
