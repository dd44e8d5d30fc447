package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.App.Port)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Upstream.StoreKey != "store-key" {
		t.Fatalf("unexpected store key %q", cfg.Upstream.StoreKey)
	}
	if got := cfg.Upstream.Timeout; got != 10*time.Second {
		t.Fatalf("expected upstream timeout 10s, got %v", got)
	}
	if got := cfg.Cart.TTL; got != 168*time.Hour {
		t.Fatalf("expected cart ttl 168h, got %v", got)
	}
	if cfg.Cart.UsesMemory() {
		t.Fatalf("expected redis cart backend by default")
	}
	if got := cfg.Session.CookieName; got != "sf_session" {
		t.Fatalf("unexpected cookie name %q", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Catalog.WarmingEnabled() || cfg.Catalog.WarmInterval != 45*time.Second {
		t.Fatalf("expected cache warming every 45s, got %v", cfg.Catalog.WarmInterval)
	}
}

func TestCatalogWarmingDisabledWithoutCache(t *testing.T) {
	cfg := CatalogConfig{CacheTTL: 0, WarmInterval: time.Minute}
	if cfg.WarmingEnabled() {
		t.Fatalf("warming needs a cache ttl")
	}
	cfg = CatalogConfig{CacheTTL: time.Minute}
	if cfg.WarmingEnabled() {
		t.Fatalf("zero interval disables warming")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBadUpstreamURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvUpstreamURL, "ftp://upstream.local")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http upstream url to be rejected")
	}
}

func TestLoad_CartBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartBackend, "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Cart.UsesMemory() {
		t.Fatalf("expected memory backend")
	}

	t.Setenv(EnvCartBackend, "disk")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cart backend to be rejected")
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCORSOrigins, "https://shop.example,https://www.shop.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvSessionSecret, "secret")
	t.Setenv(EnvUpstreamURL, "https://api.storefront.test")
	t.Setenv(EnvUpstreamStoreKey, "store-key")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
