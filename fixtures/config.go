/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package fixtures

import (
	"fmt"

	"github.com/devtoolbox/mockapi/config"
	"github.com/devtoolbox/mockapi/query"
)

const (
	cfgDefaultKeyPrefix = "fixtures"
	cfgKeyDir           = "dir"
	cfgKeyResources     = "resources"
)

// DefaultMaxLimits contains the page size caps of resources that do not use the global one.
var DefaultMaxLimits = map[string]int{
	"users":    50,
	"comments": 50,
	"quotes":   10,
}

// ResourceConfig is a per-resource configuration.
type ResourceConfig struct {
	MaxLimit int `mapstructure:"maxLimit" yaml:"maxLimit" json:"maxLimit"`
}

// Config represents a set of configuration parameters for fixtures loading.
type Config struct {
	// Dir is a directory with <resource>.json files that override the embedded ones.
	Dir       string                    `mapstructure:"dir" yaml:"dir" json:"dir"`
	Resources map[string]ResourceConfig `mapstructure:"resources" yaml:"resources" json:"resources"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	cfg := NewConfig()
	cfg.Resources = defaultResources()
	return cfg
}

// KeyPrefix implements config.KeyPrefixProvider.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults implements config.Config.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyDir, "")
}

// Set implements config.Config.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.Dir, err = dp.GetString(cfgKeyDir); err != nil {
		return err
	}

	var resources map[string]ResourceConfig
	if dp.IsSet(cfgKeyResources) {
		if err = dp.UnmarshalKey(cfgKeyResources, &resources); err != nil {
			return err
		}
	}
	c.Resources = defaultResources()
	for name, resCfg := range resources {
		if resCfg.MaxLimit < 0 {
			return dp.WrapKeyErr(cfgKeyResources+"."+name+".maxLimit", fmt.Errorf("cannot be negative"))
		}
		c.Resources[name] = resCfg
	}
	return nil
}

// MaxLimit returns the page size cap for the resource.
func (c *Config) MaxLimit(resource string) int {
	if resCfg, ok := c.Resources[resource]; ok && resCfg.MaxLimit > 0 {
		return resCfg.MaxLimit
	}
	return query.MaxLimit
}

func defaultResources() map[string]ResourceConfig {
	res := make(map[string]ResourceConfig, len(DefaultMaxLimits))
	for name, maxLimit := range DefaultMaxLimits {
		res[name] = ResourceConfig{MaxLimit: maxLimit}
	}
	return res
}
