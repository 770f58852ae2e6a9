package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the variable that points at an optional YAML config file.
const ConfigFileEnv = "REVIEWS_CONFIG_FILE"

// RateLimitConfig controls submission throttling.
type RateLimitConfig struct {
	Backend   string        `yaml:"backend"` // "memory" or "redis"
	PerWindow int           `yaml:"per_window"`
	Window    time.Duration `yaml:"window"`
}

// RedisConfig is only used when the rate limit backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

// TLSConfig enables HTTPS on the API listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

// Config holds everything the review service reads at startup.
// Secrets (API key, JWT secret, data key, Redis password) are never read from
// the YAML file, only from the environment.
type Config struct {
	ServiceName string          `yaml:"service_name"`
	Env         string          `yaml:"env"`
	ListenAddr  string          `yaml:"listen_addr"`
	DBPath      string          `yaml:"db_path"`
	LogLevel    string          `yaml:"log_level"`
	LogFormat   string          `yaml:"log_format"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Redis       RedisConfig     `yaml:"redis"`
	TLS         TLSConfig       `yaml:"tls"`

	APIKey    string `yaml:"-"`
	JWTSecret string `yaml:"-"`
	DataKey   string `yaml:"-"` // base64, 32 bytes decoded
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServiceName: "carereviews",
		Env:         "development",
		ListenAddr:  ":8080",
		DBPath:      "./carereviews_db",
		LogLevel:    "info",
		LogFormat:   "json",
		RateLimit: RateLimitConfig{
			Backend:   "memory",
			PerWindow: 30,
			Window:    60 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
	}
}

// Load layers defaults, the optional YAML file, the given .env files and the
// process environment, in that order.
func Load(envFiles ...string) (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg.loadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	setString(&c.ServiceName, "SERVICE_NAME")
	setString(&c.Env, "ENV")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	if port := os.Getenv("SERVER_PORT"); port != "" && os.Getenv("LISTEN_ADDR") == "" {
		c.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	setString(&c.DBPath, "DB_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	setString(&c.RateLimit.Backend, "RATE_LIMIT_BACKEND")
	setInt(&c.RateLimit.PerWindow, "RATE_LIMIT_PER_MIN")
	if c.RateLimit.PerWindow > 0 && os.Getenv("RATE_LIMIT_PER_MIN") != "" {
		c.RateLimit.Window = time.Minute
	}

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	if v := os.Getenv("ENABLE_HTTPS"); v != "" {
		c.TLS.Enabled, _ = strconv.ParseBool(v)
	}
	setString(&c.TLS.CertPath, "TLS_CERT_PATH")
	setString(&c.TLS.KeyPath, "TLS_KEY_PATH")

	setString(&c.APIKey, "API_KEY")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.DataKey, "REVIEWS_DEK")
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
	}
	if c.RateLimit.PerWindow <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit must allow at least one request per positive window")
	}
	if c.TLS.Enabled && (c.TLS.CertPath == "" || c.TLS.KeyPath == "") {
		return errors.New("ENABLE_HTTPS requires TLS_CERT_PATH and TLS_KEY_PATH")
	}
	if c.IsProduction() && !c.TLS.Enabled {
		return errors.New("ENV=production requires ENABLE_HTTPS")
	}
	if _, err := c.DecodeDataKey(); err != nil {
		return err
	}
	return nil
}

// DecodeDataKey returns the 32-byte data encryption key for the review store.
func (c *Config) DecodeDataKey() ([]byte, error) {
	if c.DataKey == "" {
		return nil, errors.New("REVIEWS_DEK not set in environment")
	}
	key, err := base64.StdEncoding.DecodeString(c.DataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode REVIEWS_DEK: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("REVIEWS_DEK must be 32 bytes (base64-encoded)")
	}
	return key, nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
