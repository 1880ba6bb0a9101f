// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProviderConfig holds the remote data provider endpoints. Defaults point at
// the public Yahoo Finance API.
type ProviderConfig struct {
	SearchURL   string        `yaml:"search_url"`
	QuoteURL    string        `yaml:"quote_url"`
	UserAgent   string        `yaml:"user_agent"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Provider: ProviderConfig{
			SearchURL:   "https://query2.finance.yahoo.com/v1/finance/search",
			QuoteURL:    "https://query2.finance.yahoo.com/v10/finance/quoteSummary",
			UserAgent:   "Mozilla/5.0",
			HTTPTimeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file (path
// from DILIGENCE_CONFIG, or the given path), and env overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if envPath := os.Getenv("DILIGENCE_CONFIG"); envPath != "" {
		path = envPath
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SEARCH_URL"); v != "" {
		cfg.Provider.SearchURL = v
	}
	if v := os.Getenv("QUOTE_URL"); v != "" {
		cfg.Provider.QuoteURL = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Provider.HTTPTimeout = d
		}
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
