// Package config loads the settings shared by the flickr binaries, from
// FLICKR_* environment variables or from viper (config file, env, flags).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/flickr-client/pkg/cache"
	"github.com/Sternrassler/flickr-client/pkg/logging"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FLICKR_"

// Cache backends.
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheFile     = "file"
	CacheRedis    = "redis"
	CacheSQL      = "sql"
	CachePostgres = "postgres"
	CacheNATS     = "nats"
)

// Token backends.
const (
	TokensMemory = "memory"
	TokensFile   = "file"
	TokensRedis  = "redis"
)

// Config holds all settings. The mapstructure names are the viper keys
// and config file fields.
type Config struct {
	APIKey       string `env:"API_KEY" mapstructure:"api_key"`
	APISecret    string `env:"API_SECRET" mapstructure:"api_secret"`
	AccessToken  string `env:"ACCESS_TOKEN" mapstructure:"access_token"`
	AccessSecret string `env:"ACCESS_SECRET" mapstructure:"access_secret"`

	ProxyBaseURL string `env:"PROXY_BASE_URL" mapstructure:"proxy_base_url"`

	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"none" mapstructure:"cache_backend"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"10m" mapstructure:"cache_ttl"`
	CacheDir     string        `env:"CACHE_DIR" mapstructure:"cache_dir"`
	CacheTable   string        `env:"CACHE_TABLE" envDefault:"flickr_cache" mapstructure:"cache_table"`

	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" mapstructure:"redis_url"`
	DatabaseURL string `env:"DATABASE_URL" mapstructure:"database_url"`
	NATSURL     string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222" mapstructure:"nats_url"`
	NATSBucket  string `env:"NATS_BUCKET" envDefault:"flickr_cache" mapstructure:"nats_bucket"`

	TokenBackend string `env:"TOKEN_BACKEND" envDefault:"file" mapstructure:"token_backend"`
	TokenFile    string `env:"TOKEN_FILE" mapstructure:"token_file"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s" mapstructure:"http_timeout"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" mapstructure:"log_level"`
	LogPretty bool   `env:"LOG_PRETTY" mapstructure:"log_pretty"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080" mapstructure:"listen_addr"`
}

// FromEnv reads FLICKR_* variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// SetDefaults registers every key with its default on v, which also makes
// AutomaticEnv resolve them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("api_secret", "")
	v.SetDefault("access_token", "")
	v.SetDefault("access_secret", "")
	v.SetDefault("proxy_base_url", "")
	v.SetDefault("cache_backend", CacheNone)
	v.SetDefault("cache_ttl", cache.DefaultTTL)
	v.SetDefault("cache_dir", "")
	v.SetDefault("cache_table", cache.DefaultTable)
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("database_url", "")
	v.SetDefault("nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("nats_bucket", cache.DefaultNATSBucket)
	v.SetDefault("token_backend", TokensFile)
	v.SetDefault("token_file", "")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("log_level", string(logging.LevelInfo))
	v.SetDefault("log_pretty", false)
	v.SetDefault("listen_addr", ":8080")
}

// FromViper decodes v into a Config. Call SetDefaults first.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// NewViper returns a viper instance reading configFile, or
// $HOME/.flickr/config.yml when empty, plus FLICKR_* variables.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigType("yml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; env and flags still apply.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// DefaultDir is $HOME/.flickr, or .flickr when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flickr"
	}
	return filepath.Join(home, ".flickr")
}

func (c *Config) applyDefaults() {
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	if c.CacheBackend == "" {
		c.CacheBackend = CacheNone
	}
	c.TokenBackend = strings.ToLower(strings.TrimSpace(c.TokenBackend))
	if c.TokenBackend == "" {
		c.TokenBackend = TokensFile
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(DefaultDir(), "cache")
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(DefaultDir(), "tokens.json")
	}
}

// Validate checks required fields and backend names.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required (%sAPI_KEY)", EnvPrefix)
	}
	if c.APISecret == "" {
		return fmt.Errorf("api secret is required (%sAPI_SECRET)", EnvPrefix)
	}
	if (c.AccessToken == "") != (c.AccessSecret == "") {
		return fmt.Errorf("access token and access secret must be set together")
	}

	switch c.CacheBackend {
	case CacheNone, CacheMemory, CacheFile, CacheRedis, CacheNATS:
	case CacheSQL, CachePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("cache backend %s requires a database url", c.CacheBackend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}

	switch c.TokenBackend {
	case TokensMemory, TokensFile, TokensRedis:
	default:
		return fmt.Errorf("unknown token backend %q", c.TokenBackend)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}
