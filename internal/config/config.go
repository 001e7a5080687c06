// Package config loads figstyle settings from a config file, the
// environment, and built-in defaults.
//
// Settings are read from figstyle.toml in the working directory or
// ~/.config/figstyle/, and can be overridden with FIGSTYLE_* environment
// variables (FIGSTYLE_CACHE_BACKEND, FIGSTYLE_REDIS_ADDR, ...).
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
)

const (
	appName   = "figstyle"
	envPrefix = "FIGSTYLE"
)

// Backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
	BackendMongo = "mongo"
)

// Config holds all settings.
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Store  StoreConfig  `mapstructure:"store"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Server ServerConfig `mapstructure:"server"`
	Schema SchemaConfig `mapstructure:"schema"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	// Prefix scopes cache keys, for deployments sharing one Redis database.
	Prefix string `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type SchemaConfig struct {
	// Path to a schema document; empty selects the embedded schema.
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", 7*24*time.Hour)
	v.SetDefault("cache.prefix", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.dir", "")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", appName)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("schema.path", "")
}

// Load reads the configuration. If file is non-empty it must exist;
// otherwise the default search paths are tried and a missing file is not
// an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case file == "" && errors.As(err, &notFound):
			// No config file; defaults and environment only.
		case file != "" && isNotExist(file):
			return nil, ferrors.Wrap(ferrors.ErrCodeFileNotFound, err, "config file %s", file)
		default:
			return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.File); err != nil {
		cfg.File = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// Validate checks backend names and durations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput,
			"cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendFile, BackendMongo:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput,
			"store.backend: unknown backend %q (want file or mongo)", c.Store.Backend)
	}
	if c.Cache.TTL < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// CacheDir returns the file cache directory: cache.dir when set, else
// $XDG_CACHE_HOME/figstyle or ~/.cache/figstyle.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
