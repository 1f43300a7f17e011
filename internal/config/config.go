package config

import (
	"errors"
	"fmt"
	"os"
	"time"

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

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // entitlement cache TTL
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type RazorpayConfig struct {
	KeyID     string        `yaml:"key_id"`
	KeySecret string        `yaml:"key_secret"` // signs orders; never logged
	BaseURL   string        `yaml:"base_url"`   // empty selects production
	Timeout   time.Duration `yaml:"timeout"`
}

// PlanTier is one configured catalog entry: exact amount -> plan.
type PlanTier struct {
	Amount         string `yaml:"amount"` // decimal string, major units
	Name           string `yaml:"name"`
	DurationMonths int    `yaml:"duration_months"`
}

type LimitsConfig struct {
	ConfirmPerMinute int           `yaml:"confirm_per_minute"` // per-user verify rate limit
	StalePaymentAge  time.Duration `yaml:"stale_payment_age"`  // created payments older than this are failed
	SweepInterval    time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Razorpay RazorpayConfig `yaml:"razorpay"`
	Plans    []PlanTier     `yaml:"plans"`
	Limits   LimitsConfig   `yaml:"limits"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Minute
	}
	if cfg.Razorpay.Timeout <= 0 {
		cfg.Razorpay.Timeout = 10 * time.Second
	}
	if cfg.Limits.ConfirmPerMinute <= 0 {
		cfg.Limits.ConfirmPerMinute = 10
	}
	if cfg.Limits.StalePaymentAge <= 0 {
		cfg.Limits.StalePaymentAge = 24 * time.Hour
	}
	if cfg.Limits.SweepInterval <= 0 {
		cfg.Limits.SweepInterval = time.Hour
	}

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
	if !dev && (cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "") {
		return nil, errors.New("razorpay.key_id and razorpay.key_secret are required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
