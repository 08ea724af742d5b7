// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file; the file wins over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is the complete runtime configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
}

// HTTPConfig holds the listen port and server timeouts.
type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings. URL, when set, takes
// precedence over the individual fields.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	ConnectAttempts int           `yaml:"connect_attempts"`
	ConnectDelay    time.Duration `yaml:"connect_delay"`
}

// StoreConfig selects the store backend and bounds each unit of work.
type StoreConfig struct {
	Driver      string        `yaml:"driver"`
	TxTimeout   time.Duration `yaml:"tx_timeout"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// LogConfig selects the logger mode. "prod" gives JSON output; anything else gives console output.
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// RedisConfig enables registration notices when Addr is set.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// Default returns local-development defaults.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "eventregistration",
			SSLMode:         "disable",
			MaxConns:        20,
			MinConns:        2,
			ConnectAttempts: 5,
			ConnectDelay:    2 * time.Second,
		},
		Store: StoreConfig{
			Driver:      StoreDriverPostgres,
			TxTimeout:   10 * time.Second,
			LockTimeout: 5 * time.Second,
		},
		Log: LogConfig{Mode: "dev"},
		Redis: RedisConfig{
			Channel: "registrations",
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Port = getEnv("PORT", c.HTTP.Port)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	if v := os.Getenv("DB_CONNECT_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_ATTEMPTS: %w", err)
		}
		c.Database.ConnectAttempts = n
	}

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	if err := durationEnv("TX_TIMEOUT", &c.Store.TxTimeout); err != nil {
		return err
	}
	if err := durationEnv("LOCK_TIMEOUT", &c.Store.LockTimeout); err != nil {
		return err
	}

	c.Log.Mode = getEnv("LOG_MODE", c.Log.Mode)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Channel = getEnv("REDIS_CHANNEL", c.Redis.Channel)
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if c.Store.TxTimeout <= 0 {
		errs = append(errs, errors.New("store.tx_timeout must be positive"))
	}
	if c.Store.LockTimeout <= 0 {
		errs = append(errs, errors.New("store.lock_timeout must be positive"))
	}
	if c.Store.LockTimeout > c.Store.TxTimeout {
		errs = append(errs, errors.New("store.lock_timeout must not exceed store.tx_timeout"))
	}
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http.port is required"))
	}
	if c.Database.ConnectAttempts < 1 {
		errs = append(errs, errors.New("database.connect_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
