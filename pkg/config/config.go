package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Checkout CheckoutConfig
	Payments PaymentsConfig
	Catalog  CatalogConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NEBULA_APP_ENV" required:"true"`
	Port         string `envconfig:"NEBULA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NEBULA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NEBULA_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"NEBULA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CheckoutConfig struct {
	PollInterval  time.Duration `envconfig:"NEBULA_CHECKOUT_POLL_INTERVAL" default:"750ms"`
	SessionTTL    time.Duration `envconfig:"NEBULA_CHECKOUT_SESSION_TTL" default:"10m"`
	AwaitTimeout  time.Duration `envconfig:"NEBULA_CHECKOUT_AWAIT_TIMEOUT" default:"12m"`
	StartingCoins int64         `envconfig:"NEBULA_CHECKOUT_STARTING_COINS" default:"1200"`
}

func (c CheckoutConfig) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutPollInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutSessionTTL)
	}
	if c.StartingCoins < 0 {
		return fmt.Errorf("%s must not be negative", EnvCheckoutStartingCoins)
	}
	return nil
}

// PaymentsConfig holds the simulated settlement delays per method family.
type PaymentsConfig struct {
	NebulaPayDelay time.Duration `envconfig:"NEBULA_PAYMENTS_NEBULA_PAY_DELAY" default:"2500ms"`
	OnChainDelay   time.Duration `envconfig:"NEBULA_PAYMENTS_ONCHAIN_DELAY" default:"4s"`
	VoucherDelay   time.Duration `envconfig:"NEBULA_PAYMENTS_VOUCHER_DELAY" default:"6s"`
	HybridDelay    time.Duration `envconfig:"NEBULA_PAYMENTS_HYBRID_DELAY" default:"5s"`
}

type CatalogConfig struct {
	Path string `envconfig:"NEBULA_CATALOG_PATH"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NEBULA_REDIS_URL"`
	Address      string        `envconfig:"NEBULA_REDIS_ADDR"`
	Password     string        `envconfig:"NEBULA_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEBULA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEBULA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEBULA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEBULA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEBULA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEBULA_REDIS_WRITE_TIMEOUT" default:"5s"`
	SessionTTL   time.Duration `envconfig:"NEBULA_REDIS_SESSION_TTL" default:"24h"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type KafkaConfig struct {
	Brokers     []string `envconfig:"NEBULA_KAFKA_BROKERS"`
	OrdersTopic string   `envconfig:"NEBULA_KAFKA_ORDERS_TOPIC" default:"nebula.orders"`
	BufferSize  int      `envconfig:"NEBULA_KAFKA_BUFFER_SIZE" default:"256"`
}

// Enabled reports whether at least one broker was configured.
func (k KafkaConfig) Enabled() bool {
	for _, broker := range k.Brokers {
		if strings.TrimSpace(broker) != "" {
			return true
		}
	}
	return false
}
