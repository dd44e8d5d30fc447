package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvSessionSecret    = "STOREFRONT_SESSION_SECRET"
	EnvUpstreamURL      = "STOREFRONT_UPSTREAM_URL"
	EnvUpstreamStoreKey = "STOREFRONT_UPSTREAM_STORE_KEY"
	EnvCartBackend      = "STOREFRONT_CART_BACKEND"
	EnvCORSOrigins      = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)
