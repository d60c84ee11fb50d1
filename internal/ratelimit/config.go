/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devtoolbox/mockapi/config"
)

const cfgDefaultKeyPrefix = "rateLimit"

const (
	cfgKeyEnabled            = "enabled"
	cfgKeyAlg                = "alg"
	cfgKeyLimit              = "limit"
	cfgKeyWindow             = "window"
	cfgKeyMaxBurst           = "maxBurst"
	cfgKeyMaxKeys            = "maxKeys"
	cfgKeySweepInterval      = "sweepInterval"
	cfgKeyDryRun             = "dryRun"
	cfgKeyResponseStatusCode = "responseStatusCode"
)

// DefaultSweepInterval is a default interval of removing expired identities.
const DefaultSweepInterval = time.Minute

// Alg represents a rate limiting algorithm.
type Alg string

// Supported rate limiting algorithms.
const (
	AlgSlidingLog  Alg = "sliding_log"
	AlgLeakyBucket Alg = "leaky_bucket"
)

var availableAlgs = []string{string(AlgSlidingLog), string(AlgLeakyBucket)}

// Config represents a set of configuration parameters for rate limiting of API endpoints.
type Config struct {
	Enabled  bool                `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Alg      Alg                 `mapstructure:"alg" yaml:"alg" json:"alg"`
	Limit    int                 `mapstructure:"limit" yaml:"limit" json:"limit"`
	Window   config.TimeDuration `mapstructure:"window" yaml:"window" json:"window"`
	MaxBurst int                 `mapstructure:"maxBurst" yaml:"maxBurst" json:"maxBurst"`
	// MaxKeys bounds the number of tracked identities. Zero means no bound.
	MaxKeys int `mapstructure:"maxKeys" yaml:"maxKeys" json:"maxKeys"`
	// SweepInterval is how often expired identities are removed. Zero disables sweeping.
	SweepInterval      config.TimeDuration `mapstructure:"sweepInterval" yaml:"sweepInterval" json:"sweepInterval"`
	DryRun             bool                `mapstructure:"dryRun" yaml:"dryRun" json:"dryRun"`
	ResponseStatusCode int                 `mapstructure:"responseStatusCode" yaml:"responseStatusCode" json:"responseStatusCode"`

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
	return &Config{
		keyPrefix:          cfgDefaultKeyPrefix,
		Enabled:            true,
		Alg:                AlgSlidingLog,
		Limit:              DefaultLimit,
		Window:             config.TimeDuration(DefaultWindow),
		SweepInterval:      config.TimeDuration(DefaultSweepInterval),
		ResponseStatusCode: http.StatusTooManyRequests,
	}
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
	dp.SetDefault(cfgKeyEnabled, true)
	dp.SetDefault(cfgKeyAlg, string(AlgSlidingLog))
	dp.SetDefault(cfgKeyLimit, DefaultLimit)
	dp.SetDefault(cfgKeyWindow, DefaultWindow)
	dp.SetDefault(cfgKeySweepInterval, DefaultSweepInterval)
	dp.SetDefault(cfgKeyResponseStatusCode, http.StatusTooManyRequests)
}

// Set implements config.Config.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.Enabled, err = dp.GetBool(cfgKeyEnabled); err != nil {
		return err
	}

	var algStr string
	if algStr, err = dp.GetStringFromSet(cfgKeyAlg, availableAlgs, true); err != nil {
		return err
	}
	c.Alg = Alg(strings.ToLower(algStr))

	if c.Limit, err = dp.GetInt(cfgKeyLimit); err != nil {
		return err
	}
	if c.Limit < 1 {
		return dp.WrapKeyErr(cfgKeyLimit, fmt.Errorf("must be positive"))
	}

	var dur time.Duration
	if dur, err = dp.GetDuration(cfgKeyWindow); err != nil {
		return err
	}
	if dur <= 0 {
		return dp.WrapKeyErr(cfgKeyWindow, fmt.Errorf("must be positive"))
	}
	c.Window = config.TimeDuration(dur)

	if c.MaxBurst, err = dp.GetInt(cfgKeyMaxBurst); err != nil {
		return err
	}
	if c.MaxBurst < 0 {
		return dp.WrapKeyErr(cfgKeyMaxBurst, fmt.Errorf("cannot be negative"))
	}
	if c.MaxKeys, err = dp.GetInt(cfgKeyMaxKeys); err != nil {
		return err
	}
	if c.MaxKeys < 0 {
		return dp.WrapKeyErr(cfgKeyMaxKeys, fmt.Errorf("cannot be negative"))
	}

	if dur, err = dp.GetDuration(cfgKeySweepInterval); err != nil {
		return err
	}
	if dur < 0 {
		return dp.WrapKeyErr(cfgKeySweepInterval, fmt.Errorf("cannot be negative"))
	}
	c.SweepInterval = config.TimeDuration(dur)

	if c.DryRun, err = dp.GetBool(cfgKeyDryRun); err != nil {
		return err
	}
	if c.ResponseStatusCode, err = dp.GetInt(cfgKeyResponseStatusCode); err != nil {
		return err
	}
	if c.ResponseStatusCode < 400 || c.ResponseStatusCode > 599 {
		return dp.WrapKeyErr(cfgKeyResponseStatusCode, fmt.Errorf("must be an HTTP error status code"))
	}
	return nil
}

// Rate returns the configured limit per window.
func (c *Config) Rate() Rate {
	return Rate{Count: c.Limit, Duration: time.Duration(c.Window)}
}
