package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Controls ControlsConfig `yaml:"controls"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" env:"DASH_ADDR"`
	RateLimit   float64  `yaml:"rate_limit" env:"DASH_RATE_LIMIT"` // requests per second, 0 disables
	CORSOrigins []string `yaml:"cors_origins" env:"DASH_CORS_ORIGINS" envSeparator:","`
}

type DataConfig struct {
	Customers   string `yaml:"customers" env:"DASH_CUSTOMERS"`
	Coordinates string `yaml:"coordinates" env:"DASH_COORDINATES"`
}

// CatalogConfig optionally pins the closed category sets.
type CatalogConfig struct {
	Professions []string `yaml:"professions" env:"DASH_PROFESSIONS" envSeparator:","`
	Generations []string `yaml:"generations" env:"DASH_GENERATIONS" envSeparator:","`
}

type ControlsConfig struct {
	DefaultMinAge int `yaml:"default_min_age" env:"DASH_DEFAULT_MIN_AGE"`
	DefaultMaxAge int `yaml:"default_max_age" env:"DASH_DEFAULT_MAX_AGE"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"DASH_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"DASH_LOG_DEVELOPMENT"`
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Controls: ControlsConfig{DefaultMinAge: 25, DefaultMaxAge: 55},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig reads path (skipped when empty) over the defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Data.Customers == "" {
		errs = append(errs, errors.New("data.customers is required"))
	}
	if c.Data.Coordinates == "" {
		errs = append(errs, errors.New("data.coordinates is required"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit))
	}
	if c.Controls.DefaultMinAge < 0 || c.Controls.DefaultMinAge > c.Controls.DefaultMaxAge {
		errs = append(errs, fmt.Errorf("controls: default age range [%d, %d] is invalid",
			c.Controls.DefaultMinAge, c.Controls.DefaultMaxAge))
	}
	return errors.Join(errs...)
}
