package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/store"
)

// Duration is a time.Duration written as a string such as "90s" or "2m"
type Duration time.Duration

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText writes the duration in Go notation
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the time.Duration value
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Bidding   BiddingConfig   `toml:"bidding"`
	Finalizer FinalizerConfig `toml:"finalizer"`
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type SchedulerConfig struct {
	BotInterval      Duration `toml:"bot_interval"`
	FinalizeInterval Duration `toml:"finalize_interval"`
	StoreTimeout     Duration `toml:"store_timeout"`
	RunOnStart       bool     `toml:"run_on_start"`
}

type BiddingConfig struct {
	DefaultMinIncrement int64 `toml:"default_min_increment"`
	MaxConcurrency      int   `toml:"max_concurrency"`
}

type FinalizerConfig struct {
	MaxConcurrency   int      `toml:"max_concurrency"`
	OrderTTL         Duration `toml:"order_ttl"`
	NotificationLink string   `toml:"notification_link"`
	RepairGrace      Duration `toml:"repair_grace"`
}

type StoreConfig struct {
	Driver        string `toml:"driver"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	SeedFile      string `toml:"seed_file"`
}

// Options converts the store section for store.Open
func (c StoreConfig) Options() store.Options {
	return store.Options{
		Driver:     c.Driver,
		SQLitePath: c.SQLitePath,
		Redis: store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
	}
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration of the reference deployment:
// bots every minute, finalization every two minutes.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Scheduler: SchedulerConfig{
			BotInterval:      Duration(time.Minute),
			FinalizeInterval: Duration(2 * time.Minute),
			StoreTimeout:     Duration(20 * time.Second),
			RunOnStart:       true,
		},
		Bidding: BiddingConfig{
			DefaultMinIncrement: 500,
			MaxConcurrency:      16,
		},
		Finalizer: FinalizerConfig{
			MaxConcurrency:   8,
			OrderTTL:         Duration(48 * time.Hour),
			NotificationLink: "/notifications",
			RepairGrace:      Duration(time.Minute),
		},
		Store: StoreConfig{
			Driver:      store.DriverMemory,
			SQLitePath:  "auctions.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "auction:",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the TOML file at path on top of the defaults and applies
// environment overrides. A missing file or empty path yields the defaults.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return Config{}, fmt.Errorf("failed to open config: %w", err)
		default:
			defer file.Close()
			dec := toml.NewDecoder(file).DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return Config{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	overrides := []struct {
		key string
		dst *string
	}{
		{key: "PORT", dst: &cfg.Server.Port},
		{key: "STORE_DRIVER", dst: &cfg.Store.Driver},
		{key: "SQLITE_PATH", dst: &cfg.Store.SQLitePath},
		{key: "REDIS_ADDR", dst: &cfg.Store.RedisAddr},
		{key: "LOG_LEVEL", dst: &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
}

// Validate rejects settings the engine cannot run with
func (c Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server.port is empty")
	}
	if c.Scheduler.BotInterval <= 0 {
		problems = append(problems, "scheduler.bot_interval must be positive")
	}
	if c.Scheduler.FinalizeInterval <= 0 {
		problems = append(problems, "scheduler.finalize_interval must be positive")
	}
	if c.Scheduler.StoreTimeout < 0 {
		problems = append(problems, "scheduler.store_timeout must not be negative")
	}
	if c.Bidding.DefaultMinIncrement <= 0 {
		problems = append(problems, "bidding.default_min_increment must be positive")
	}
	if c.Bidding.MaxConcurrency <= 0 {
		problems = append(problems, "bidding.max_concurrency must be positive")
	}
	if c.Finalizer.MaxConcurrency <= 0 {
		problems = append(problems, "finalizer.max_concurrency must be positive")
	}
	if c.Finalizer.OrderTTL <= 0 {
		problems = append(problems, "finalizer.order_ttl must be positive")
	}
	if c.Finalizer.RepairGrace < 0 {
		problems = append(problems, "finalizer.repair_grace must not be negative")
	}

	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case store.DriverRedis:
		if c.Store.RedisAddr == "" {
			problems = append(problems, "store.redis_addr is required for the redis driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of memory, sqlite, redis", c.Store.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", auctionerrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
