// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Public voucher checks allowed per IP per window.
	VoucherCheckLimit  int           `yaml:"voucher_check_limit"`
	VoucherCheckWindow time.Duration `yaml:"voucher_check_window"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	// How long a processed callback payload is remembered for the replay fast path.
	ReplayTTL time.Duration `yaml:"replay_ttl"`
}

type GatewayConfig struct {
	Provider     string        `yaml:"provider"` // duitku | noop
	BaseURL      string        `yaml:"base_url"`
	MerchantCode string        `yaml:"merchant_code"`
	APIKey       string        `yaml:"api_key"`
	CallbackURL  string        `yaml:"callback_url"`
	ReturnURL    string        `yaml:"return_url"`
	ExpiryPeriod int           `yaml:"expiry_minutes"`
	Timeout      time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	OrderPrefix string        `yaml:"order_prefix"`
	Currency    string        `yaml:"currency"`
	ServiceFee  int64         `yaml:"service_fee"`
	PendingTTL  time.Duration `yaml:"pending_ttl"`
	Gateway     GatewayConfig `yaml:"gateway"`
}

type OutboxConfig struct {
	Workers      int           `yaml:"workers"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	RelayEvery   time.Duration `yaml:"relay_every"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	BatchSize    int           `yaml:"batch_size"`
}

type SchedulerConfig struct {
	ExpiryEvery time.Duration `yaml:"expiry_every"`
}

type BrevoConfig struct {
	APIKey      string `yaml:"api_key"`
	SenderName  string `yaml:"sender_name"`
	SenderEmail string `yaml:"sender_email"`
}

type TelegramConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
}

type NotifyConfig struct {
	Brevo    BrevoConfig    `yaml:"brevo"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notify    NotifyConfig    `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the yaml file at path, applies environment overrides
// (optionally from a .env file next to the process) and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes raw yaml, applies env overrides and defaults, and validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payment.Gateway.Provider == "duitku" {
		if cfg.Payment.Gateway.MerchantCode == "" || cfg.Payment.Gateway.APIKey == "" {
			return nil, errors.New("payment.gateway.merchant_code and api_key are required for duitku")
		}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.Database.URL, "DATABASE_URL")
	envString(&cfg.Redis.URL, "REDIS_URL")
	envString(&cfg.Redis.Password, "REDIS_PASSWORD")
	envString(&cfg.Payment.Gateway.APIKey, "GATEWAY_API_KEY")
	envString(&cfg.Payment.Gateway.MerchantCode, "GATEWAY_MERCHANT_CODE")
	envString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	envString(&cfg.Notify.Brevo.APIKey, "BREVO_API_KEY")
	envString(&cfg.Notify.Telegram.Token, "TELEGRAM_TOKEN")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.HTTP.VoucherCheckLimit <= 0 {
		cfg.HTTP.VoucherCheckLimit = 20
	}
	if cfg.HTTP.VoucherCheckWindow <= 0 {
		cfg.HTTP.VoucherCheckWindow = time.Minute
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "whatsapp-reseller"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Redis.ReplayTTL <= 0 {
		cfg.Redis.ReplayTTL = 24 * time.Hour
	}
	if cfg.Payment.OrderPrefix == "" {
		cfg.Payment.OrderPrefix = "WAR"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "IDR"
	}
	if cfg.Payment.PendingTTL <= 0 {
		cfg.Payment.PendingTTL = 24 * time.Hour
	}
	if cfg.Payment.Gateway.Provider == "" {
		cfg.Payment.Gateway.Provider = "noop"
	}
	if cfg.Payment.Gateway.ExpiryPeriod <= 0 {
		cfg.Payment.Gateway.ExpiryPeriod = 60
	}
	if cfg.Payment.Gateway.Timeout <= 0 {
		cfg.Payment.Gateway.Timeout = 10 * time.Second
	}
	if cfg.Outbox.Workers <= 0 {
		cfg.Outbox.Workers = 4
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		cfg.Outbox.MaxAttempts = 8
	}
	if cfg.Outbox.RetryBackoff <= 0 {
		cfg.Outbox.RetryBackoff = 30 * time.Second
	}
	if cfg.Outbox.RelayEvery <= 0 {
		cfg.Outbox.RelayEvery = 15 * time.Second
	}
	if cfg.Outbox.StaleAfter <= 0 {
		cfg.Outbox.StaleAfter = 5 * time.Minute
	}
	if cfg.Outbox.BatchSize <= 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Scheduler.ExpiryEvery <= 0 {
		cfg.Scheduler.ExpiryEvery = 10 * time.Minute
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
