package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the console's runtime configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Salesforce SalesforceConfig `mapstructure:"salesforce"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

type AppConfig struct {
	Name                   string `mapstructure:"name"`
	Environment            string `mapstructure:"environment"`
	Port                   string `mapstructure:"port"`
	BodyLimitBytes         int    `mapstructure:"body_limit_bytes"`
	AllowedOrigins         string `mapstructure:"allowed_origins"`
	RateLimitMax           int    `mapstructure:"rate_limit_max"`
	RateLimitWindowSeconds int    `mapstructure:"rate_limit_window_seconds"`
	PurgeIntervalSeconds   int    `mapstructure:"purge_interval_seconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
}

type RedisConfig struct {
	Address       string `mapstructure:"address"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	PriceCacheTTL int    `mapstructure:"price_cache_ttl_seconds"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	UseMock   string `mapstructure:"use_mock"`
}

// Mock mirrors the console's USE_MOCK_STRIPE flag: an explicit "true"/"false" wins,
// otherwise the mock is used while the secret key is missing or still the sample placeholder.
func (s StripeConfig) Mock() bool {
	if v, ok := explicitFlag(s.UseMock); ok {
		return v
	}
	key := strings.TrimSpace(s.SecretKey)
	return key == "" || strings.HasPrefix(key, "sk_live_or_test")
}

type SalesforceConfig struct {
	LoginURL         string `mapstructure:"login_url"`
	ClientID         string `mapstructure:"client_id"`
	Username         string `mapstructure:"username"`
	Audience         string `mapstructure:"audience"`
	PrivateKeyBase64 string `mapstructure:"private_key_base64"`
	UseMock          string `mapstructure:"use_mock"`
}

// Mock mirrors the console's USE_MOCK_SALESFORCE flag.
func (s SalesforceConfig) Mock() bool {
	if v, ok := explicitFlag(s.UseMock); ok {
		return v
	}
	id := strings.TrimSpace(s.ClientID)
	return id == "" || id == "connected_app_consumer_key"
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkflowConfig struct {
	IdempotencyTTLHours int `mapstructure:"idempotency_ttl_hours"`
}

// IdempotencyTTL is how long a reservation blocks a key.
func (w WorkflowConfig) IdempotencyTTL() time.Duration {
	return time.Duration(w.IdempotencyTTLHours) * time.Hour
}

type SeedConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

func explicitFlag(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required (set AUTH_JWT_SECRET)")
	}
	if c.Workflow.IdempotencyTTLHours <= 0 {
		return errors.New("workflow.idempotency_ttl_hours must be positive")
	}
	if c.App.Port == "" {
		return errors.New("app.port is required")
	}
	return nil
}
