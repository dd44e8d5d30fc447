package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/inventory"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

type fakeRedis struct {
	data   map[string]string
	counts map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }

func (f *fakeRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) RateLimitKey(scope string) string { return "rl:" + scope }

type stubInventory struct {
	inventory.Service
	lastSession string
}

func (s *stubInventory) Reconcile(ctx context.Context, sessionID string) (*inventory.View, error) {
	s.lastSession = sessionID
	return &inventory.View{}, nil
}

type stubCatalog struct {
	catalog.Service
	lastProduct int64
}

func (s *stubCatalog) Variations(ctx context.Context, productID int64) ([]catalog.VariationView, error) {
	s.lastProduct = productID
	return []catalog.VariationView{}, nil
}

type stubOrders struct {
	orders.Service
}

type stubCredentials struct {
	creds *session.Credentials
}

func (s stubCredentials) Credentials(context.Context, string) (*session.Credentials, error) {
	return s.creds, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		Session: config.SessionConfig{
			Secret:     "secret",
			Issuer:     "storefront",
			TTL:        time.Hour,
			CookieName: "sf_session",
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, p Params) http.Handler {
	t.Helper()
	if p.Config == nil {
		p.Config = testConfig()
	}
	if p.Logger == nil {
		p.Logger = logger.New(logger.Options{ServiceName: "test", Level: "error", Output: io.Discard})
	}
	return NewRouter(p)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, Params{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRouteStartsSession(t *testing.T) {
	inv := &stubInventory{}
	router := newTestRouter(t, Params{Inventory: inv, Redis: newFakeRedis()})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if _, err := uuid.Parse(inv.lastSession); err != nil {
		t.Fatalf("expected minted session id, got %q", inv.lastSession)
	}
	if resp.Header().Get(middleware.SessionTokenHeader) == "" {
		t.Fatalf("expected session token header")
	}
}

func TestVariationsRouteParsesProductID(t *testing.T) {
	cat := &stubCatalog{}
	router := newTestRouter(t, Params{Catalog: cat})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/id/5/variations", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if cat.lastProduct != 5 {
		t.Fatalf("expected product 5, got %d", cat.lastProduct)
	}
}

func TestOrdersRequireLogin(t *testing.T) {
	router := newTestRouter(t, Params{Orders: stubOrders{}, Sessions: stubCredentials{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPlaceOrderRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(t, Params{Redis: newFakeRedis()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Idempotency-Key") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(t, Params{
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `http_requests_total{handler="/health/live"`) {
		t.Fatalf("expected request counter in metrics output:\n%s", resp.Body.String())
	}
}
