package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider exposes application configuration through getters so that
// handlers, stores and tests can depend on an interface rather than on a struct.
type Provider interface {
	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetServerAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string

	GetRedisURL() string
	GetCacheTTL() time.Duration

	GetRetryMax() int
	GetRetryBaseDelay() time.Duration

	GetOfflineCacheName() string
	GetOfflineWatch() bool
	GetStaticDir() string
}

// Config holds all configuration for the application.
type Config struct {
	DBURL            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	ServerAddr    string
	AppBaseURL    string
	SessionSecret string

	EmailProvider string
	EmailAPIKey   string
	EmailSender   string

	RedisURL string
	CacheTTL time.Duration

	RetryMax       int
	RetryBaseDelay time.Duration

	OfflineCacheName string
	OfflineWatch     bool
	StaticDir        string
}

var _ Provider = (*Config)(nil)

// Defaults used when neither the YAML file nor the environment set a key.
const (
	DefaultServerAddr       = ":8080"
	DefaultAppBaseURL       = "http://localhost:8080"
	DefaultQueryTimeout     = 5 * time.Second
	DefaultExecuteTimeout   = 10 * time.Second
	DefaultCacheTTL         = 10 * time.Minute
	DefaultRetryMax         = 3
	DefaultRetryBaseDelay   = 500 * time.Millisecond
	DefaultOfflineCacheName = "personal-notebook-v2.3"
	DefaultStaticDir        = "web/static"
)

// New loads configuration from a .env file (if present), an optional YAML
// file named by NOTEBOOK_CONFIG, and the process environment. Environment
// variables win over the YAML file.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg, err := Load(os.Getenv("NOTEBOOK_CONFIG"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Load builds a Config from an optional YAML file and the environment
// without validating it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// SURREAL_URL -> surreal_url, matching the flat keys used in the YAML file.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{
		DBURL:            k.String("surreal_url"),
		DBNs:             k.String("surreal_ns"),
		DBDb:             k.String("surreal_db"),
		DBUser:           k.String("surreal_user"),
		DBPass:           k.String("surreal_pass"),
		DBQueryTimeout:   durationOr(k, "db_query_timeout", DefaultQueryTimeout),
		DBExecuteTimeout: durationOr(k, "db_execute_timeout", DefaultExecuteTimeout),
		ServerAddr:       stringOr(k, "server_addr", DefaultServerAddr),
		AppBaseURL:       strings.TrimRight(stringOr(k, "app_base_url", DefaultAppBaseURL), "/"),
		SessionSecret:    k.String("session_secret"),
		EmailProvider:    stringOr(k, "email_provider", "log"),
		EmailAPIKey:      k.String("email_api_key"),
		EmailSender:      k.String("email_sender"),
		RedisURL:         k.String("redis_url"),
		CacheTTL:         durationOr(k, "cache_ttl", DefaultCacheTTL),
		RetryMax:         intOr(k, "retry_max", DefaultRetryMax),
		RetryBaseDelay:   durationOr(k, "retry_base_delay", DefaultRetryBaseDelay),
		OfflineCacheName: stringOr(k, "offline_cache_name", DefaultOfflineCacheName),
		OfflineWatch:     k.Bool("offline_watch"),
		StaticDir:        stringOr(k, "static_dir", DefaultStaticDir),
	}
	return cfg, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var missing []string
	if c.DBURL == "" {
		missing = append(missing, "SURREAL_URL")
	}
	if c.DBNs == "" {
		missing = append(missing, "SURREAL_NS")
	}
	if c.DBDb == "" {
		missing = append(missing, "SURREAL_DB")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required settings are not set: %s", strings.Join(missing, ", "))
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("RETRY_MAX must be non-negative, got %d", c.RetryMax)
	}
	return nil
}

func stringOr(k *koanf.Koanf, key, def string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return def
}

func intOr(k *koanf.Koanf, key string, def int) int {
	if !k.Exists(key) || k.String(key) == "" {
		return def
	}
	return k.Int(key)
}

func durationOr(k *koanf.Koanf, key string, def time.Duration) time.Duration {
	if d := k.Duration(key); d > 0 {
		return d
	}
	return def
}

func (c *Config) GetDBURL() string                   { return c.DBURL }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetEmailProvider() string           { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string             { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string             { return c.EmailSender }
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetCacheTTL() time.Duration         { return c.CacheTTL }
func (c *Config) GetRetryMax() int                   { return c.RetryMax }
func (c *Config) GetRetryBaseDelay() time.Duration   { return c.RetryBaseDelay }
func (c *Config) GetOfflineCacheName() string        { return c.OfflineCacheName }
func (c *Config) GetOfflineWatch() bool              { return c.OfflineWatch }
func (c *Config) GetStaticDir() string               { return c.StaticDir }
