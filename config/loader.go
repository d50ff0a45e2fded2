package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment keys are the config keys upper-cased with "." replaced by "_",
// e.g. DATABASE_HOST or STRIPE_SECRET_KEY.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	return load(v)
}

// LoadFromFile loads configuration from a specific YAML file plus the environment.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideLegacyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows, so every key gets a default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "omnibridge-console")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.body_limit_bytes", 4*1024*1024)
	v.SetDefault("app.allowed_origins", "*")
	v.SetDefault("app.rate_limit_max", 60)
	v.SetDefault("app.rate_limit_window_seconds", 60)
	v.SetDefault("app.purge_interval_seconds", 3600)

	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "console")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.price_cache_ttl_seconds", 300)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.use_mock", "")

	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.audience", "")
	v.SetDefault("salesforce.private_key_base64", "")
	v.SetDefault("salesforce.use_mock", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("workflow.idempotency_ttl_hours", 24)

	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("seed.admin_password", "")
	v.SetDefault("seed.admin_name", "Admin")
}

// overrideLegacyEnv accepts the variable names the console deployment already uses.
func overrideLegacyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"JWT_SECRET_KEY", &cfg.Auth.JWTSecret},
		{"JWT_SECRET", &cfg.Auth.JWTSecret},
		{"STRIPE_SECRET_KEY", &cfg.Stripe.SecretKey},
		{"USE_MOCK_STRIPE", &cfg.Stripe.UseMock},
		{"USE_MOCK_SALESFORCE", &cfg.Salesforce.UseMock},
		{"SF_CLIENT_ID", &cfg.Salesforce.ClientID},
		{"SF_USERNAME", &cfg.Salesforce.Username},
		{"SF_JWT_AUDIENCE", &cfg.Salesforce.Audience},
		{"SF_PRIVATE_KEY_BASE64", &cfg.Salesforce.PrivateKeyBase64},
		{"DB_PASSWORD", &cfg.Database.Password},
		{"ADMIN_EMAIL", &cfg.Seed.AdminEmail},
		{"ADMIN_PASSWORD", &cfg.Seed.AdminPassword},
	}
	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		if val := strings.TrimSpace(os.Getenv(o.env)); val != "" {
			*o.target = val
		}
	}

	// these keys carry defaults, so the legacy name applies only when the namespaced one is unset
	defaulted := []struct {
		env, legacy string
		target      *string
	}{
		{"APP_PORT", "PORT", &cfg.App.Port},
		{"SALESFORCE_LOGIN_URL", "SF_LOGIN_URL", &cfg.Salesforce.LoginURL},
		{"DATABASE_USER", "DB_USER", &cfg.Database.User},
		{"DATABASE_NAME", "DB_NAME", &cfg.Database.Name},
		{"SEED_ADMIN_NAME", "ADMIN_NAME", &cfg.Seed.AdminName},
	}
	for _, d := range defaulted {
		if os.Getenv(d.env) != "" {
			continue
		}
		if val := strings.TrimSpace(os.Getenv(d.legacy)); val != "" {
			*d.target = val
		}
	}
	if cfg.Salesforce.Audience == "" {
		cfg.Salesforce.Audience = cfg.Salesforce.LoginURL
	}
}
