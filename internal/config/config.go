// Package config handles job configuration: defaults, an optional YAML
// file, a .env file, and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"duck-job/internal/ddl"
)

// Defaults for a run with no configuration at all.
const (
	DefaultAppName  = "ExampleJob"
	DefaultNumRows  = 20
	DefaultTruncate = 20
)

// Config holds the job configuration. The zero value is not usable; start
// from Defaults or Load.
type Config struct {
	AppName     string `yaml:"app_name"`
	Threads     int    `yaml:"threads"`      // DuckDB worker threads, 0 = engine default
	MemoryLimit string `yaml:"memory_limit"` // DuckDB memory_limit, empty = engine default
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error (default "info")
	LogFormat   string `yaml:"log_format"`   // auto, json, text (default "auto")

	Show ShowConfig `yaml:"show"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// ShowConfig controls how the table is rendered.
type ShowConfig struct {
	NumRows  int `yaml:"num_rows"`
	Truncate int `yaml:"truncate"` // 0 disables truncation
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		AppName:   DefaultAppName,
		LogLevel:  "info",
		LogFormat: "auto",
		Show: ShowConfig{
			NumRows:  DefaultNumRows,
			Truncate: DefaultTruncate,
		},
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app name must not be empty")
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	if c.MemoryLimit != "" {
		if err := ddl.ValidateMemoryLimit(c.MemoryLimit); err != nil {
			return err
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q: use debug, info, warn or error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q: use auto, json or text", c.LogFormat)
	}
	if c.Show.NumRows < 0 {
		return fmt.Errorf("show.num_rows must not be negative, got %d", c.Show.NumRows)
	}
	if c.Show.Truncate < 0 {
		return fmt.Errorf("show.truncate must not be negative, got %d", c.Show.Truncate)
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("JOB_APP_NAME"); v != "" {
		c.AppName = v
	}
	if v := os.Getenv("JOB_MEMORY_LIMIT"); v != "" {
		c.MemoryLimit = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"JOB_THREADS", &c.Threads},
		{"JOB_NUM_ROWS", &c.Show.NumRows},
		{"JOB_TRUNCATE", &c.Show.Truncate},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.key, err)
		}
		*e.dst = n
	}

	if c.Threads == 0 && c.MemoryLimit != "" {
		c.Warnings = append(c.Warnings, "memory limit set without a thread count; DuckDB uses all cores")
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
