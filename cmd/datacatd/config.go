// CLAUDE:SUMMARY YAML configuration for the datacatd server with env overrides.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full datacatd configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`
	LogLevel  string `yaml:"log_level"`

	// MCPTransport selects how the MCP server is exposed: "" (disabled) or
	// "stdio" (the process speaks MCP on stdin/stdout instead of serving HTTP).
	MCPTransport string `yaml:"mcp_transport"`

	// SeedCollections are built-in dataset collections inserted at startup
	// when the catalog is empty (e.g. "robotics", "vision", "nlp").
	SeedCollections []string `yaml:"seed_collections"`

	Fetch FetchConfig `yaml:"fetch"`
	Watch WatchConfig `yaml:"watch"`
}

// FetchConfig configures example page retrieval.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxBytesMB     int    `yaml:"max_bytes_mb"`
	UserAgent      string `yaml:"user_agent"`
}

// WatchConfig configures render cache invalidation polling.
type WatchConfig struct {
	IntervalMS int `yaml:"interval_ms"`
	DebounceMS int `yaml:"debounce_ms"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8086",
		DBPath:   "db/datacat.db",
		LogLevel: "info",
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxBytesMB:     10,
			UserAgent:      "datacat/1.0",
		},
		Watch: WatchConfig{
			IntervalMS: 1000,
			DebounceMS: 500,
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxBytesMB <= 0 {
		return fmt.Errorf("fetch.max_bytes_mb must be > 0")
	}
	if c.MCPTransport != "" && c.MCPTransport != "stdio" {
		return fmt.Errorf("mcp_transport must be empty or \"stdio\", got %q", c.MCPTransport)
	}
	return nil
}

// applyEnv overlays environment variables onto the config. Env wins over the
// file so container deployments can override without editing YAML.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		c.MCPTransport = v
	}
}
