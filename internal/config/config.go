// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// AuthConfig points at the hosted auth provider. When JWTSecret is set,
// tokens are verified locally (HS256); otherwise the provider's user
// endpoint is called with the anon key.
type AuthConfig struct {
	ProviderURL    string `yaml:"provider_url"`
	AnonKey        string `yaml:"anon_key"`
	ServiceRoleKey string `yaml:"service_role_key"` // server-only, never sent to clients
	JWTSecret      string `yaml:"jwt_secret"`
}

type MercadoPagoConfig struct {
	AccessToken   string        `yaml:"access_token"`
	WebhookSecret string        `yaml:"webhook_secret"` // optional; empty skips x-signature checks
	Timeout       time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
}

// AppConfig carries the public-facing base URL callback and notification
// URLs are derived from.
type AppConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ResumeTTL    time.Duration `yaml:"resume_ttl"`    // lifetime of checkout resume tokens
	ResumeSecret string        `yaml:"resume_secret"` // HS256 key for resume tokens
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Payment  PaymentConfig  `yaml:"payment"`
	App      AppConfig      `yaml:"app"`
	Storage  StorageConfig  `yaml:"storage"`

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
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Payment.MercadoPago.Timeout <= 0 {
		c.Payment.MercadoPago.Timeout = 5 * time.Second
	}
	if c.App.ResumeTTL <= 0 {
		c.App.ResumeTTL = 24 * time.Hour
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 48 * time.Hour
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Payment.MercadoPago.AccessToken == "" {
		return errors.New("payment.mercadopago.access_token is required")
	}
	if c.App.BaseURL == "" {
		return errors.New("app.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.App.BaseURL); err != nil {
		return fmt.Errorf("app.base_url: %w", err)
	}
	if c.Auth.JWTSecret == "" && (c.Auth.ProviderURL == "" || c.Auth.AnonKey == "") {
		return errors.New("auth: set jwt_secret or provider_url + anon_key")
	}
	return nil
}

// WebhookURL is the server-to-server notification endpoint registered on
// every payment preference.
func (c *Config) WebhookURL() string {
	return c.App.BaseURL + "/api/mercado-pago/webhook"
}
