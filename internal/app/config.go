/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package app

import (
	"fmt"

	"github.com/devtoolbox/mockapi/config"
	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver"
	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log"
)

// EnvVarsPrefix is a prefix of environment variables that override configuration values
// (e.g. MOCKAPI_SERVER_ADDRESS).
const EnvVarsPrefix = "MOCKAPI"

// Config is the whole application configuration.
type Config struct {
	Server    *httpserver.Config `mapstructure:"server" yaml:"server" json:"server"`
	Log       *log.Config        `mapstructure:"log" yaml:"log" json:"log"`
	RateLimit *ratelimit.Config  `mapstructure:"rateLimit" yaml:"rateLimit" json:"rateLimit"`
	Fixtures  *fixtures.Config   `mapstructure:"fixtures" yaml:"fixtures" json:"fixtures"`
}

// NewConfig creates an empty Config to be filled by LoadConfig.
func NewConfig() *Config {
	return &Config{
		Server:    httpserver.NewConfig(),
		Log:       log.NewConfig(),
		RateLimit: ratelimit.NewConfig(),
		Fixtures:  fixtures.NewConfig(),
	}
}

// NewDefaultConfig creates a Config with default values of all sections.
func NewDefaultConfig() *Config {
	return &Config{
		Server:    httpserver.NewDefaultConfig(),
		Log:       log.NewDefaultConfig(),
		RateLimit: ratelimit.NewDefaultConfig(),
		Fixtures:  fixtures.NewDefaultConfig(),
	}
}

func (c *Config) sections() []config.Config {
	return []config.Config{c.Server, c.Log, c.RateLimit, c.Fixtures}
}

// LoadConfig loads configuration from the file (YAML or JSON by its extension) and environment variables.
// Only environment variables and defaults are used if path is empty.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()
	sections := cfg.sections()
	loader := config.NewDefaultLoader(EnvVarsPrefix)
	if path == "" {
		if err := loader.Load(sections[0], sections[1:]...); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	if err := loader.LoadFromPath(path, sections[0], sections[1:]...); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}
