// Package config loads server settings from defaults, an optional YAML file and PIAZZA_* env vars
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Posts     PostsConfig     `yaml:"posts"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// CORSOrigins lists allowed browser origins; "*" allows any
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url,omitempty"`
	// Migrate runs pending migrations before serving
	Migrate bool `yaml:"migrate,omitempty"`
}

type PostsConfig struct {
	// ExpiryWindow is how long a root post accepts comments and reactions
	ExpiryWindow time.Duration `yaml:"expiry_window"`
}

type AuthConfig struct {
	JWTKey     string        `yaml:"jwt_key"`
	Issuer     string        `yaml:"issuer,omitempty"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type RateLimitConfig struct {
	// Requests per Window per client; zero disables limiting
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	// RedisURL switches to the shared redis limiter when set
	RedisURL string `yaml:"redis_url,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev,omitempty"`
}

// Default returns the built in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":3001",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver: DriverPostgres,
		},
		Posts: PostsConfig{
			ExpiryWindow: 48 * time.Hour,
		},
		Auth: AuthConfig{
			Issuer:     "piazza",
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path is empty)
// and environment overrides, in that order. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from PIAZZA_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("PIAZZA_SERVER_ADDR", &c.Server.Addr)
	if v, ok := lookup("PIAZZA_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	str("PIAZZA_STORAGE_DRIVER", &c.Storage.Driver)
	str("PIAZZA_DATABASE_URL", &c.Storage.DatabaseURL)
	str("PIAZZA_JWT_KEY", &c.Auth.JWTKey)
	str("PIAZZA_JWT_ISSUER", &c.Auth.Issuer)
	str("PIAZZA_REDIS_URL", &c.RateLimit.RedisURL)
	str("PIAZZA_LOG_LEVEL", &c.Log.Level)

	return errors.Join(
		flag("PIAZZA_MIGRATE", &c.Storage.Migrate),
		dur("PIAZZA_EXPIRY_WINDOW", &c.Posts.ExpiryWindow),
		dur("PIAZZA_TOKEN_TTL", &c.Auth.TokenTTL),
		num("PIAZZA_BCRYPT_COST", &c.Auth.BcryptCost),
		num("PIAZZA_RATELIMIT_REQUESTS", &c.RateLimit.Requests),
		dur("PIAZZA_RATELIMIT_WINDOW", &c.RateLimit.Window),
		flag("PIAZZA_LOG_DEV", &c.Log.Dev),
	)
}

// Validate reports every problem with c at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver))
	}

	if c.Posts.ExpiryWindow <= 0 {
		errs = append(errs, errors.New("posts.expiry_window must be positive"))
	}
	if c.Auth.JWTKey == "" {
		errs = append(errs, errors.New("auth.jwt_key is required"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("auth.token_ttl must not be negative"))
	}
	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("ratelimit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit.window must be positive when rate limiting is enabled"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
