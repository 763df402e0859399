// Package config loads sparqlflow's runtime configuration from a YAML file
// (if present) layered under environment variable overrides, following the
// same godotenv+envdecode+yaml.v3 layering used across the example pack's
// services.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoggingConfig controls internal/logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// QueryConfig controls query execution defaults.
type QueryConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"QUERY_TIMEOUT"`
	Lenient      bool          `yaml:"lenient" env:"QUERY_LENIENT"`
	DefaultGraph string        `yaml:"default_graph" env:"QUERY_DEFAULT_GRAPH"`
}

// CacheConfig controls the hypermedia dereference cache.
type CacheConfig struct {
	Size int `yaml:"size" env:"CACHE_SIZE"`
}

// SourceConfig describes one configured quad-pattern source.
type SourceConfig struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type"`
	URL            string `yaml:"url"`
	SearchTemplate string `yaml:"search_template"`
	AuthHeader     string `yaml:"auth_header"`
}

// Config is sparqlflow's top-level configuration.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	Query   QueryConfig    `yaml:"query"`
	Cache   CacheConfig    `yaml:"cache"`
	Sources []SourceConfig `yaml:"sources"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Query:   QueryConfig{Timeout: 30 * time.Second},
		Cache:   CacheConfig{Size: 256},
	}
}

// Load reads .env (if present), a YAML file named by CONFIG_FILE (or
// sparqlflow.yaml if CONFIG_FILE is unset and the file exists), and finally
// layers environment variable overrides on top.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "sparqlflow.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
