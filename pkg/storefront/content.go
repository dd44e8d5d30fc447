package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func (c *Client) HeroImages(ctx context.Context) ([]HeroImage, error) {
	images, _, err := getList[HeroImage](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-hero",
		endpoint:   "content.hero",
		idempotent: true,
	})
	return images, err
}

func (c *Client) Footer(ctx context.Context) (*Footer, error) {
	return getOne[Footer](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-footer",
		endpoint:   "content.footer",
		idempotent: true,
	})
}

func (c *Client) Pages(ctx context.Context) ([]Page, error) {
	pages, _, err := getList[Page](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-footer/pages",
		endpoint:   "content.pages",
		idempotent: true,
	})
	return pages, err
}

func (c *Client) PageByURL(ctx context.Context, pageURL string) (*Page, error) {
	trimmed := strings.Trim(strings.TrimSpace(pageURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page url is required")
	}
	page, err := getOne[Page](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-footer/page/" + url.PathEscape(trimmed),
		endpoint:   "content.page",
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "page not found")
	}
	return page, nil
}

// Branding returns the store logo and favicon.
func (c *Client) Branding(ctx context.Context) (*Branding, error) {
	return getOne[Branding](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-logo",
		endpoint:   "content.branding",
		idempotent: true,
	})
}

func (c *Client) Store(ctx context.Context) (*Store, error) {
	return getOne[Store](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-logo/store",
		endpoint:   "content.store",
		idempotent: true,
	})
}

// Turnstile returns the store's bot-challenge site key, or nil when none is configured.
func (c *Client) Turnstile(ctx context.Context) (*Turnstile, error) {
	return getOne[Turnstile](ctx, c, call{
		method:     http.MethodGet,
		path:       "/storefront-turnstile",
		endpoint:   "content.turnstile",
		idempotent: true,
	})
}
