// Package config loads and validates service configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds process configuration.
type Config struct {
	// HTTPAddr is the listen address of the REST API.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCHealthAddr is the listen address of the gRPC health service; empty disables it.
	GRPCHealthAddr string `mapstructure:"GRPC_HEALTH_ADDR"`
	// Env is the deployment environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`

	// StoreDriver selects the document store backend: postgres, mongo or memory.
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	MongoURL    string `mapstructure:"MONGO_URL"`
	DBName      string `mapstructure:"DB_NAME"`

	// AuthSecret is the HS256 signing key. There is no default.
	AuthSecret string `mapstructure:"AUTH_SECRET"`
	TokenTTL   string `mapstructure:"TOKEN_TTL"`
	// PasswordScheme is the scheme used for new hashes; stored hashes of other schemes still verify.
	PasswordScheme string `mapstructure:"PASSWORD_SCHEME"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`
	// EnforceRoleMatch rejects tokens whose role claim differs from the stored identity role.
	EnforceRoleMatch bool `mapstructure:"AUTH_ENFORCE_ROLE_MATCH"`

	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	MaxBodyBytes   int64  `mapstructure:"MAX_BODY_BYTES"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`
}

// Load reads .env (if present), then builds and validates Config from the environment.
// Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_HEALTH_ADDR", ":9090")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MONGO_URL", "")
	v.SetDefault("DB_NAME", "hrms")
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PASSWORD_SCHEME", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("AUTH_ENFORCE_ROLE_MATCH", true)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return errors.New("config: AUTH_SECRET is required")
	}
	if c.Production() && len(c.AuthSecret) < 32 {
		return errors.New("config: AUTH_SECRET must be at least 32 bytes in production")
	}
	if _, err := c.TokenTTLDuration(); err != nil {
		return err
	}
	switch c.PasswordScheme {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("config: unsupported PASSWORD_SCHEME %q", c.PasswordScheme)
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("config: MONGO_URL is required for the mongo driver")
		}
		if c.DBName == "" {
			return errors.New("config: DB_NAME is required for the mongo driver")
		}
	case DriverMemory:
		if c.Production() {
			return errors.New("config: memory store is not allowed in production")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxUploadBytes <= 0 || c.MaxBodyBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES and MAX_BODY_BYTES must be positive")
	}
	return nil
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// TokenTTLDuration parses TOKEN_TTL.
func (c *Config) TokenTTLDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("config: TOKEN_TTL must be positive")
	}
	return d, nil
}

// AllowedOrigins splits CORS_ORIGINS into a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
