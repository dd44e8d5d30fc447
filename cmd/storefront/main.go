package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/cache"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/content"
	"github.com/angelmondragon/storefront/internal/inventory"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/internal/warmer"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/storefront"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		return err
	}

	client, err := storefront.NewFromConfig(cfg.Upstream,
		storefront.WithMetrics(metrics.NewUpstreamMetrics(registry)),
		// a rejected token means the backend session is gone; drop ours so the
		// visitor is treated as logged out on the next request
		storefront.WithUnauthorizedHandler(func(ctx context.Context) {
			sid := session.IDFromContext(ctx)
			if sid == "" {
				return
			}
			if err := sessionManager.Detach(context.WithoutCancel(ctx), sid); err != nil {
				logg.Error(ctx, "failed to detach expired session", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	readThrough := cache.New(redisClient, cfg.Catalog.CacheTTL, logg)

	catalogService, err := catalog.NewService(client, readThrough)
	if err != nil {
		return err
	}
	contentService, err := content.NewService(client, readThrough)
	if err != nil {
		return err
	}

	if cfg.Catalog.WarmingEnabled() {
		cacheWarmer, err := newCacheWarmer(cfg.Catalog, client, readThrough, redisClient, registry, logg)
		if err != nil {
			return err
		}
		go runBackground(ctx, "cache warmer", cacheWarmer, logg)
	}

	cartRepo, checkoutRepo, err := repositories(cfg.Cart, redisClient)
	if err != nil {
		return err
	}
	locker := repo.NewLocker()

	cartService, err := cart.NewService(cart.ServiceParams{
		Repository: cartRepo,
		Locker:     locker,
		Logger:     logg,
		Metrics:    storeMetrics,
	})
	if err != nil {
		return err
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Carts:       cartService,
		Catalog:     client,
		Logger:      logg,
		Metrics:     storeMetrics,
		Concurrency: cfg.Cart.ReconcileConcurrency,
	})
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Repository: checkoutRepo,
		Locker:     locker,
		Carts:      cartService,
		Methods:    catalogService,
		Orders:     client,
		Turnstile:  contentService,
		Logger:     logg,
		Metrics:    storeMetrics,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       client,
		SessionManager: sessionManager,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Client:      client,
		Logger:      logg,
		Concurrency: cfg.Cart.ReconcileConcurrency,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
		Auth:        authService,
		Catalog:     catalogService,
		Content:     contentService,
		Carts:       cartService,
		Inventory:   inventoryService,
		Checkout:    checkoutService,
		Orders:      ordersService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_backend": cfg.Cart.Backend,
	})
	logg.Info(logCtx, "starting storefront server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down storefront server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type backgroundRunner interface {
	Run(ctx context.Context) error
}

// runBackground blocks until r exits and logs any exit other than shutdown.
func runBackground(ctx context.Context, name string, r backgroundRunner, logg *logger.Logger) {
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(logg.WithField(ctx, "component", name), "background runner stopped", err)
	}
}

func repositories(cfg config.CartConfig, client *redis.Client) (cart.Repository, checkout.Repository, error) {
	if cfg.UsesMemory() {
		return cart.NewMemoryRepository(cfg.TTL), checkout.NewMemoryRepository(cfg.CheckoutTTL), nil
	}
	cartRepo, err := cart.NewRedisRepository(client, cfg.TTL)
	if err != nil {
		return nil, nil, err
	}
	checkoutRepo, err := checkout.NewRedisRepository(client, cfg.CheckoutTTL)
	if err != nil {
		return nil, nil, err
	}
	return cartRepo, checkoutRepo, nil
}

func newCacheWarmer(cfg config.CatalogConfig, client *storefront.Client, readThrough *cache.ReadThrough, redisClient *redis.Client, reg prometheus.Registerer, logg *logger.Logger) (*warmer.Service, error) {
	refresher := readThrough.Refresher()
	catalogService, err := catalog.NewService(client, refresher)
	if err != nil {
		return nil, err
	}
	contentService, err := content.NewService(client, refresher)
	if err != nil {
		return nil, err
	}
	catalogJob, err := warmer.NewCatalogJob(catalogService)
	if err != nil {
		return nil, err
	}
	contentJob, err := warmer.NewContentJob(contentService)
	if err != nil {
		return nil, err
	}
	lock, err := warmer.NewRedisLock(redisClient, "cache_warm", cfg.WarmInterval)
	if err != nil {
		return nil, err
	}
	return warmer.NewService(warmer.ServiceParams{
		Logger:   logg,
		Registry: warmer.NewRegistry(contentJob, catalogJob),
		Lock:     lock,
		Metrics:  metrics.NewWarmerMetrics(reg),
		Interval: cfg.WarmInterval,
	})
}
