package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront/internal/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storefront"
)

type upstream interface {
	HeroImages(ctx context.Context) ([]storefront.HeroImage, error)
	Footer(ctx context.Context) (*storefront.Footer, error)
	Pages(ctx context.Context) ([]storefront.Page, error)
	PageByURL(ctx context.Context, url string) (*storefront.Page, error)
	Branding(ctx context.Context) (*storefront.Branding, error)
	Store(ctx context.Context) (*storefront.Store, error)
	Turnstile(ctx context.Context) (*storefront.Turnstile, error)
}

type HeroImage struct {
	ID        int64  `json:"id"`
	ImageLink string `json:"image_link"`
}

type Page struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Layout bundles the store-wide chrome rendered on every page.
type Layout struct {
	StoreName    string `json:"store_name"`
	DomainName   string `json:"domain_name,omitempty"`
	LogoLink     string `json:"logo_link,omitempty"`
	FaviconLink  string `json:"favicon_link,omitempty"`
	Footer       string `json:"footer,omitempty"`
	TurnstileKey string `json:"turnstile_key,omitempty"`
	Active       bool   `json:"active"`
}

// Service exposes cached store content.
type Service interface {
	HeroImages(ctx context.Context) ([]HeroImage, error)
	Pages(ctx context.Context) ([]Page, error)
	Page(ctx context.Context, url string) (*Page, error)
	Layout(ctx context.Context) (*Layout, error)
	TurnstileKey(ctx context.Context) (string, error)
}

type service struct {
	client upstream
	cache  *cache.ReadThrough
}

func NewService(client upstream, readThrough *cache.ReadThrough) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	return &service{client: client, cache: readThrough}, nil
}

func (s *service) HeroImages(ctx context.Context) ([]HeroImage, error) {
	return cache.Get(ctx, s.cache, []string{"content", "hero"}, func(ctx context.Context) ([]HeroImage, error) {
		images, err := s.client.HeroImages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]HeroImage, 0, len(images))
		for _, img := range images {
			out = append(out, HeroImage{ID: img.ID, ImageLink: img.ImageLink})
		}
		return out, nil
	})
}

func (s *service) Pages(ctx context.Context) ([]Page, error) {
	return cache.Get(ctx, s.cache, []string{"content", "pages"}, func(ctx context.Context) ([]Page, error) {
		pages, err := s.client.Pages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Page, 0, len(pages))
		for _, p := range pages {
			out = append(out, toPage(p))
		}
		return out, nil
	})
}

func (s *service) Page(ctx context.Context, url string) (*Page, error) {
	trimmed := strings.Trim(strings.TrimSpace(url), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page url is required")
	}
	return cache.Get(ctx, s.cache, []string{"content", "page", trimmed}, func(ctx context.Context) (*Page, error) {
		page, err := s.client.PageByURL(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		out := toPage(*page)
		return &out, nil
	})
}

// Layout merges store, branding, footer and turnstile. Only the store record is required.
func (s *service) Layout(ctx context.Context) (*Layout, error) {
	return cache.Get(ctx, s.cache, []string{"content", "layout"}, func(ctx context.Context) (*Layout, error) {
		store, err := s.client.Store(ctx)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		layout := &Layout{StoreName: store.StoreName, DomainName: store.DomainName, Active: store.IsActive}

		branding, err := s.client.Branding(ctx)
		if err != nil {
			return nil, err
		}
		if branding != nil {
			layout.LogoLink = branding.LogoLink
			layout.FaviconLink = branding.FaviconLink
		}

		footer, err := s.client.Footer(ctx)
		if err != nil {
			return nil, err
		}
		if footer != nil {
			layout.Footer = footer.Description
		}

		key, err := s.TurnstileKey(ctx)
		if err != nil {
			return nil, err
		}
		layout.TurnstileKey = key
		return layout, nil
	})
}

// TurnstileKey returns the public challenge site key, or "" when the store has none.
func (s *service) TurnstileKey(ctx context.Context) (string, error) {
	return cache.Get(ctx, s.cache, []string{"content", "turnstile"}, func(ctx context.Context) (string, error) {
		turnstile, err := s.client.Turnstile(ctx)
		if err != nil {
			return "", err
		}
		if turnstile == nil {
			return "", nil
		}
		return strings.TrimSpace(turnstile.TurnstileKey), nil
	})
}

func toPage(p storefront.Page) Page {
	return Page{ID: p.ID, URL: p.URL, Description: p.Description}
}
