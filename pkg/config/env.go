package config

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                = "NEBULA_APP_ENV"
	EnvPort                  = "NEBULA_APP_PORT"
	EnvLogLevel              = "NEBULA_LOG_LEVEL"
	EnvCORSAllowedOrigins    = "NEBULA_CORS_ALLOWED_ORIGINS"
	EnvCheckoutPollInterval  = "NEBULA_CHECKOUT_POLL_INTERVAL"
	EnvCheckoutSessionTTL    = "NEBULA_CHECKOUT_SESSION_TTL"
	EnvCheckoutStartingCoins = "NEBULA_CHECKOUT_STARTING_COINS"
	EnvNebulaPayDelay        = "NEBULA_PAYMENTS_NEBULA_PAY_DELAY"
	EnvCatalogPath           = "NEBULA_CATALOG_PATH"
	EnvRedisURL              = "NEBULA_REDIS_URL"
	EnvRedisAddr             = "NEBULA_REDIS_ADDR"
	EnvKafkaBrokers          = "NEBULA_KAFKA_BROKERS"
)
