// Package config loads server configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/quantly-lab/quantly/pkg/errors"
)

// ServerConfig holds the runtime configuration of the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	// APIKey protects the HTTP API. Requests must present it in the
	// X-API-Key header. Empty disables authentication.
	APIKey string `yaml:"api_key"`
	// DatabasePath is the DuckDB file holding price bars.
	DatabasePath string `yaml:"database_path" validate:"required"`
	// AllowedOrigins is the CORS allowlist. Empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// PolygonAPIKey enables on-demand downloads through the API.
	PolygonAPIKey string `yaml:"polygon_api_key"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		DatabasePath: "data/quantly.duckdb",
	}
}

// Load reads the config file at path, falling back to defaults when path is
// empty, then applies environment overrides and validates the result.
func Load(path string) (ServerConfig, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return ServerConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	applyEnvOverrides(&config)

	if err := config.Validate(); err != nil {
		return ServerConfig{}, err
	}

	return config, nil
}

// Validate checks the config for usable values.
func (c *ServerConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid server config", err)
	}

	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func applyEnvOverrides(config *ServerConfig) {
	if v := os.Getenv("QUANTLY_HOST"); v != "" {
		config.Host = v
	}

	if v := os.Getenv("QUANTLY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Port = port
		}
	}

	if v := os.Getenv("QUANTLY_API_KEY"); v != "" {
		config.APIKey = v
	}

	if v := os.Getenv("QUANTLY_DATABASE_PATH"); v != "" {
		config.DatabasePath = v
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		config.PolygonAPIKey = v
	}
}
