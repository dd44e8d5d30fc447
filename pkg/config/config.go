package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Session   SessionConfig
	Upstream  UpstreamConfig
	Cart      CartConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.Upstream.validate(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Cart.Backend)) {
	case CartBackendRedis, CartBackendMemory:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvCartBackend, CartBackendRedis, CartBackendMemory, c.Cart.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// SessionConfig governs the signed visitor cookie and the Redis-held credentials behind it.
type SessionConfig struct {
	Secret       string        `envconfig:"STOREFRONT_SESSION_SECRET" required:"true"`
	Issuer       string        `envconfig:"STOREFRONT_SESSION_ISSUER" default:"storefront"`
	TTL          time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"720h"`
	CookieName   string        `envconfig:"STOREFRONT_SESSION_COOKIE_NAME" default:"sf_session"`
	CookieDomain string        `envconfig:"STOREFRONT_SESSION_COOKIE_DOMAIN"`
	CookieSecure bool          `envconfig:"STOREFRONT_SESSION_COOKIE_SECURE" default:"false"`
}

// UpstreamConfig points at the storefront REST backend.
type UpstreamConfig struct {
	BaseURL  string        `envconfig:"STOREFRONT_UPSTREAM_URL" required:"true"`
	StoreKey string        `envconfig:"STOREFRONT_UPSTREAM_STORE_KEY" required:"true"`
	Timeout  time.Duration `envconfig:"STOREFRONT_UPSTREAM_TIMEOUT" default:"10s"`

	RetryMaxAttempts     uint          `envconfig:"STOREFRONT_UPSTREAM_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialInterval time.Duration `envconfig:"STOREFRONT_UPSTREAM_RETRY_INITIAL_INTERVAL" default:"200ms"`
	RetryMaxInterval     time.Duration `envconfig:"STOREFRONT_UPSTREAM_RETRY_MAX_INTERVAL" default:"2s"`

	BreakerMaxRequests      uint32        `envconfig:"STOREFRONT_UPSTREAM_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval         time.Duration `envconfig:"STOREFRONT_UPSTREAM_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout          time.Duration `envconfig:"STOREFRONT_UPSTREAM_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailureThreshold uint32        `envconfig:"STOREFRONT_UPSTREAM_BREAKER_FAILURE_THRESHOLD" default:"5"`
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(u.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvUpstreamURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvUpstreamURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", EnvUpstreamURL)
	}
	return nil
}

// CartConfig selects where carts and checkout state live between requests.
type CartConfig struct {
	Backend              string        `envconfig:"STOREFRONT_CART_BACKEND" default:"redis"`
	TTL                  time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"168h"`
	CheckoutTTL          time.Duration `envconfig:"STOREFRONT_CHECKOUT_TTL" default:"24h"`
	ReconcileConcurrency int           `envconfig:"STOREFRONT_RECONCILE_CONCURRENCY" default:"4"`
}

// UsesMemory reports whether cart state is kept in-process only.
func (c CartConfig) UsesMemory() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), CartBackendMemory)
}

type CatalogConfig struct {
	CacheTTL     time.Duration `envconfig:"STOREFRONT_CATALOG_CACHE_TTL" default:"60s"`
	WarmInterval time.Duration `envconfig:"STOREFRONT_CATALOG_WARM_INTERVAL" default:"45s"`
}

// WarmingEnabled reports whether the background cache warmer should run.
func (c CatalogConfig) WarmingEnabled() bool {
	return c.CacheTTL > 0 && c.WarmInterval > 0
}

type RateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit      int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit         int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow       time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit   int           `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit      int           `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	EligibilityWindow    time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_ELIGIBILITY_WINDOW" default:"1m"`
	EligibilityIPLimit   int           `envconfig:"STOREFRONT_RATE_LIMIT_ELIGIBILITY_IP_LIMIT" default:"30"`
	PasswordResetWindow  time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_PASSWORD_RESET_WINDOW" default:"15m"`
	PasswordResetIPLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_PASSWORD_RESET_IP_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
