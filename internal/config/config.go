// Package config loads carbonledger configuration from an optional
// YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonledger/internal/logging"
)

// DefaultListen is the default HTTP listen address for serve mode.
const DefaultListen = "127.0.0.1:8090"

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig selects the ledger database location.
type StorageConfig struct {
	// Path is the SQLite database file. Empty falls back to
	// $HOME/.carbonledger/ledger.db.
	Path string `yaml:"path" env:"CARBONLEDGER_DB_PATH"`
}

// ServerConfig controls serve mode.
type ServerConfig struct {
	Listen string `yaml:"listen" env:"CARBONLEDGER_LISTEN"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CARBONLEDGER_LOG_LEVEL"`
	Format string `yaml:"format" env:"CARBONLEDGER_LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: DefaultListen},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then
// environment overrides.
//
// When path is empty the default location
// ($HOME/.carbonledger/config.yaml) is used if it exists; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config environment: %w", err)
	}

	return cfg, nil
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	}
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".carbonledger", "config.yaml")
}
