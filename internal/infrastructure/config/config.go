package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Redis (leave empty to run without Redis)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Rate limiting (requests per second per client IP, 0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// Ledger
	StoreShards         int  `env:"STORE_SHARDS"          envDefault:"32"`
	TransferStrictDebit bool `env:"TRANSFER_STRICT_DEBIT" envDefault:"true"`

	// Notifications
	NotificationWorkers    int           `env:"NOTIFICATION_WORKERS"     envDefault:"4"`
	NotificationQueueSize  int           `env:"NOTIFICATION_QUEUE_SIZE"  envDefault:"1024"`
	NotificationMaxRetries int           `env:"NOTIFICATION_MAX_RETRIES" envDefault:"3"`
	NotificationRetryDelay time.Duration `env:"NOTIFICATION_RETRY_DELAY" envDefault:"100ms"`
	NotificationChannel    string        `env:"NOTIFICATION_CHANNEL"     envDefault:"memledger:notifications"`

	// RabbitMQ notification sink (leave URL empty to disable)
	RabbitMQURL        string `env:"RABBITMQ_URL"         envDefault:""`
	RabbitMQExchange   string `env:"RABBITMQ_EXCHANGE"    envDefault:"memledger.notifications"`
	RabbitMQRoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"transfer.notification"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoreShards <= 0 {
		return fmt.Errorf("STORE_SHARDS must be positive, got %d", c.StoreShards)
	}
	if c.NotificationWorkers <= 0 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be positive, got %d", c.NotificationWorkers)
	}
	if c.NotificationQueueSize <= 0 {
		return fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be positive, got %d", c.NotificationQueueSize)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}

	return nil
}
