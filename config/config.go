/*
config.go - Server configuration

PURPOSE:
  Collects every setting the server needs in one AppConfig. Sources are
  applied in order, later ones win:

    1. Default()
    2. TOML file (optional, -config flag)
    3. Environment (SAFT_* variables)
    4. Command-line flags (applied by cmd/server)

EXAMPLE FILE:
  [server]
  port = 8080
  allowed_origins = ["http://localhost:3000"]

  [storage]
  db_path = "saft.db"

  [upstream]
  base_url = "http://localhost:9000"
  timeout_seconds = 30

  [form]
  years_back = 5

  [log]
  level = "info"
  format = "text"
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the full server configuration.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Upstream UpstreamConfig `toml:"upstream"`
	Form     FormConfig     `toml:"form"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StorageConfig selects the export history store. An empty DBPath keeps
// history in memory.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type UpstreamConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the upstream request timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// FormConfig tunes the option lists.
type FormConfig struct {
	YearsBack int `toml:"years_back"` // previous years offered after the current one
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			DBPath: "saft.db",
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:9000",
			TimeoutSeconds: 30,
		},
		Form: FormConfig{
			YearsBack: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the optional TOML file at path over the defaults and then
// applies environment overrides. A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	if v := getEnv("SAFT_PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SAFT_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("SAFT_DB_PATH"); ok {
		c.Storage.DBPath = v
	}
	if v := getEnv("SAFT_ALLOWED_ORIGINS", ""); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	c.Upstream.BaseURL = getEnv("SAFT_UPSTREAM_URL", c.Upstream.BaseURL)
	c.Log.Level = getEnv("SAFT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SAFT_LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return errors.New("upstream base_url is required")
	}
	// The HTTP write deadline is derived from this value.
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream timeout_seconds must be positive, got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Form.YearsBack < 0 {
		return fmt.Errorf("form years_back %d is negative", c.Form.YearsBack)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
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
