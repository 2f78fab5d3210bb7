// Package config loads process settings from an optional config.toml and the
// environment. Environment variables win over the file; keys map to variables
// by upper-casing and replacing dots with underscores (http.addr -> HTTP_ADDR).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
)

type Config struct {
	HTTP     HTTPConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Paging   PagingConfig
	Log      LogConfig
	Dev      DevConfig
}

type HTTPConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type StorageConfig struct {
	Driver string // memory, postgres, gorm
}

type DatabaseConfig struct {
	URL     string
	Dialect string // sqlite or postgres; gorm driver only
	Migrate bool
}

type PagingConfig struct {
	DefaultItemsPerPage int
	MaxItemsPerPage     int
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type DevConfig struct {
	Seed bool
}

// Load reads config.toml from the first of paths that has one (defaults to
// the working directory and /etc/awqaf). A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{".", "/etc/awqaf"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:              v.GetString("http.addr"),
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			ReadHeaderTimeout: v.GetDuration("http.read_header_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		},
		Database: DatabaseConfig{
			URL:     strings.TrimSpace(v.GetString("database.url")),
			Dialect: strings.ToLower(strings.TrimSpace(v.GetString("database.dialect"))),
			Migrate: v.GetBool("database.migrate"),
		},
		Paging: PagingConfig{
			DefaultItemsPerPage: v.GetInt("paging.default_items_per_page"),
			MaxItemsPerPage:     v.GetInt("paging.max_items_per_page"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Dev: DevConfig{
			Seed: v.GetBool("dev.seed"),
		},
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
		if cfg.Database.URL != "" {
			cfg.Storage.Driver = DriverPostgres
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.read_header_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.dialect", "sqlite")
	v.SetDefault("database.migrate", true)
	v.SetDefault("paging.default_items_per_page", 20)
	v.SetDefault("paging.max_items_per_page", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dev.seed", false)
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the postgres driver")
		}
	case DriverGorm:
		if c.Database.Dialect != "sqlite" && c.Database.Dialect != "postgres" {
			return fmt.Errorf("config: unsupported database.dialect %q", c.Database.Dialect)
		}
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the gorm driver")
		}
	default:
		return fmt.Errorf("config: unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Paging.DefaultItemsPerPage < 1 {
		return errors.New("config: paging.default_items_per_page must be >= 1")
	}
	if c.Paging.MaxItemsPerPage < c.Paging.DefaultItemsPerPage {
		return errors.New("config: paging.max_items_per_page must be >= paging.default_items_per_page")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("config: unsupported log.format %q", c.Log.Format)
	}
	return nil
}
