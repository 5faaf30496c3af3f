// Package config loads the courier host configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/courier/pkg/persistence"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverLoam   = "loam"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the host configuration.
type Config struct {
	Addr    string        `mapstructure:"addr"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Locking LockingConfig `mapstructure:"locking"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects where users and schools are persisted.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, stored values are
	// sealed with AES-GCM on every driver.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// RedisConfig configures the Redis client shared by the store and the locker.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LockingConfig configures per-key serialization of commands.
type LockingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Distributed bool          `mapstructure:"distributed"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// MetricsConfig toggles Prometheus collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   "data",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "courier:",
			},
		},
		Locking: LockingConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults and then
// applies COURIER_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func applyEnv(cfg *Config) error {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	set("COURIER_ADDR", &cfg.Addr)
	set("COURIER_LOG_LEVEL", &cfg.Log.Level)
	set("COURIER_STORE_DRIVER", &cfg.Store.Driver)
	set("COURIER_STORE_PATH", &cfg.Store.Path)
	set("COURIER_STORE_ENCRYPTION_KEY", &cfg.Store.EncryptionKey)
	set("COURIER_REDIS_ADDR", &cfg.Store.Redis.Addr)
	set("COURIER_REDIS_PASSWORD", &cfg.Store.Redis.Password)

	if v, ok := os.LookupEnv("COURIER_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: COURIER_REDIS_DB: %w", ErrInvalid, err)
		}
		cfg.Store.Redis.DB = db
	}
	return nil
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverLoam:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the loam driver", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Store.EncryptionKey != "" {
		if _, err := persistence.ParseKey(c.Store.EncryptionKey); err != nil {
			return fmt.Errorf("%w: store.encryption_key: %w", ErrInvalid, err)
		}
	}
	if c.Locking.Distributed && c.Store.Redis.Addr == "" {
		return fmt.Errorf("%w: distributed locking needs store.redis.addr", ErrInvalid)
	}
	if c.Locking.TTL < 0 {
		return fmt.Errorf("%w: locking.ttl must not be negative", ErrInvalid)
	}
	if c.Locking.Enabled && c.Locking.Distributed && c.Locking.TTL == 0 {
		return fmt.Errorf("%w: distributed locking needs a positive locking.ttl", ErrInvalid)
	}
	return nil
}

// UsesRedis reports whether a Redis client is needed.
func (c Config) UsesRedis() bool {
	return c.Store.Driver == DriverRedis || (c.Locking.Enabled && c.Locking.Distributed)
}
