package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
		LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		AdminUser int64  `env:"TELEGRAM_ADMIN_USER"`
		BotToken  string `env:"TELEGRAM_BOT_TOKEN"`
		ChannelID int64  `env:"TELEGRAM_CHANNEL_ID"`
	}
	Payment struct {
		ShopID    string        `env:"YOOKASSA_SHOP_ID"`
		SecretKey string        `env:"YOOKASSA_SECRET_KEY"`
		BaseURL   string        `env:"YOOKASSA_BASE_URL" env-default:"https://api.yookassa.ru/v3"`
		Timeout   time.Duration `env:"YOOKASSA_TIMEOUT" env-default:"15s"`
	}
	Scheduler struct {
		PublishPollInterval time.Duration `env:"PUBLISH_POLL_INTERVAL" env-default:"60s"`
		PaymentPollInterval time.Duration `env:"PAYMENT_POLL_INTERVAL" env-default:"10s"`
		MinPublishInterval  time.Duration `env:"MIN_PUBLISH_INTERVAL" env-default:"24h"`
		DeliveryPause       time.Duration `env:"DELIVERY_PAUSE" env-default:"1s"`
		DeliveryTimeout     time.Duration `env:"DELIVERY_TIMEOUT" env-default:"30s"`
		Location            string        `env:"SCHEDULER_LOCATION" env-default:"Europe/Moscow"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the publishing loops cannot run with.
func (c *Config) Validate() error {
	s := c.Scheduler
	if s.PublishPollInterval <= 0 {
		return fmt.Errorf("PUBLISH_POLL_INTERVAL must be positive, got %s", s.PublishPollInterval)
	}
	if s.PaymentPollInterval <= 0 {
		return fmt.Errorf("PAYMENT_POLL_INTERVAL must be positive, got %s", s.PaymentPollInterval)
	}
	if s.MinPublishInterval <= 0 {
		return fmt.Errorf("MIN_PUBLISH_INTERVAL must be positive, got %s", s.MinPublishInterval)
	}
	if s.DeliveryPause < 0 {
		return fmt.Errorf("DELIVERY_PAUSE must not be negative, got %s", s.DeliveryPause)
	}
	if s.DeliveryTimeout <= 0 {
		return fmt.Errorf("DELIVERY_TIMEOUT must be positive, got %s", s.DeliveryTimeout)
	}
	return nil
}

// GetDSN returns the libpq connection string used by goose and database/sql.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// GetURL returns the postgres:// connection URL used by pgxpool.
func (c *Config) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
