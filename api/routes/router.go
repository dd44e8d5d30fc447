package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	authcontrollers "github.com/angelmondragon/storefront/api/controllers/auth"
	cartcontrollers "github.com/angelmondragon/storefront/api/controllers/cart"
	checkoutcontrollers "github.com/angelmondragon/storefront/api/controllers/checkout"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	checkoutsvc "github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/content"
	"github.com/angelmondragon/storefront/internal/inventory"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

type credentialStore interface {
	Credentials(ctx context.Context, sessionID string) (*session.Credentials, error)
}

// redisStore is the slice of the Redis client the HTTP layer needs.
type redisStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Params wires every dependency of the HTTP surface.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       redisStore
	Sessions    credentialStore
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth      auth.Service
	Catalog   catalog.Service
	Content   content.Service
	Carts     cart.Service
	Inventory inventory.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(p.HTTPMetrics),
		middleware.Logging(logg),
	)

	var (
		ready       controllersPinger
		idempotency pkgredis.IdempotencyStore
		limiter     rateLimitStore
	)
	if p.Redis != nil {
		ready, idempotency, limiter = p.Redis, p.Redis, p.Redis
	}

	limits := cfg.RateLimit
	loginPolicy := middleware.NewRateLimitPolicy("login", limits.LoginWindow, limits.LoginIPLimit, limits.LoginEmailLimit)
	registerPolicy := middleware.NewRateLimitPolicy("register", limits.RegisterWindow, limits.RegisterIPLimit, limits.RegisterEmailLimit)
	resetPolicy := middleware.NewRateLimitPolicy("password_reset", limits.PasswordResetWindow, limits.PasswordResetIPLimit, 0)
	eligibilityPolicy := middleware.NewRateLimitPolicy("eligibility", limits.EligibilityWindow, limits.EligibilityIPLimit, 0)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, ready, logg))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, p.Sessions, logg))
		r.Use(middleware.Idempotency(idempotency, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, limiter, logg)).Post("/login", authcontrollers.AuthLogin(p.Auth, logg))
			r.With(middleware.RateLimit(registerPolicy, limiter, logg)).Post("/register", authcontrollers.AuthRegister(p.Auth, logg))
			r.Post("/logout", authcontrollers.AuthLogout(p.Auth, logg))
			r.Get("/me", authcontrollers.AuthMe(p.Auth, logg))
			r.Get("/verify", authcontrollers.AuthVerifyEmail(p.Auth, logg))
			r.With(middleware.RateLimit(resetPolicy, limiter, logg)).Post("/password-reset", authcontrollers.AuthPasswordReset(p.Auth, logg))
			r.With(middleware.RateLimit(resetPolicy, limiter, logg)).Post("/password-reset/confirm", authcontrollers.AuthPasswordResetConfirm(p.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogProducts(p.Catalog, logg))
			r.Get("/id/{productID}", controllers.CatalogProductByID(p.Catalog, logg))
			r.Get("/id/{productID}/variations", controllers.CatalogVariations(p.Catalog, logg))
			r.Get("/{slug}", controllers.CatalogProductBySlug(p.Catalog, logg))
		})
		r.Route("/variations/{variationID}", func(r chi.Router) {
			r.Get("/", controllers.CatalogVariation(p.Catalog, logg))
			r.Get("/images", controllers.CatalogVariationImages(p.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CatalogCategories(p.Catalog, logg))
			r.Get("/{categoryID}/children", controllers.CatalogSubCategories(p.Catalog, logg))
		})
		r.Get("/home-sections", controllers.CatalogHomeSections(p.Catalog, logg))
		r.Get("/methods/{kind}", controllers.CatalogCheckoutMethods(p.Catalog, logg))

		r.Route("/content", func(r chi.Router) {
			r.Get("/layout", controllers.ContentLayout(p.Content, logg))
			r.Get("/hero-images", controllers.ContentHeroImages(p.Content, logg))
			r.Get("/pages", controllers.ContentPages(p.Content, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(p.Inventory, logg))
			r.Delete("/", cartcontrollers.CartClear(p.Carts, logg))
			r.Post("/items", cartcontrollers.CartAddItem(p.Inventory, logg))
			r.Route("/items/{lineID}", func(r chi.Router) {
				r.Put("/", cartcontrollers.CartSetQuantity(p.Inventory, logg))
				r.Delete("/", cartcontrollers.CartRemoveItem(p.Inventory, logg))
				r.Post("/increment", cartcontrollers.CartIncrement(p.Inventory, logg))
				r.Post("/decrement", cartcontrollers.CartDecrement(p.Inventory, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutcontrollers.CheckoutLoad(p.Checkout, logg))
			r.Put("/methods", checkoutcontrollers.CheckoutSelectMethods(p.Checkout, logg))
			r.With(middleware.RateLimit(eligibilityPolicy, limiter, logg)).Post("/eligibility", checkoutcontrollers.CheckoutEligibility(p.Checkout, logg))
			r.Post("/orders", checkoutcontrollers.CheckoutPlaceOrder(p.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireLogin(logg))
			r.Get("/", controllers.OrdersList(p.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(p.Orders, logg))
		})
	})

	return r
}

type controllersPinger interface {
	Ping(ctx context.Context) error
}

type rateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}
