/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DataType is the format of a configuration file or stream.
type DataType string

// Supported formats.
const (
	DataTypeYAML DataType = "yaml"
	DataTypeJSON DataType = "json"
)

// DataTypeFromPath detects the format by the file extension. Anything but .json is read as YAML.
func DataTypeFromPath(path string) DataType {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DataTypeJSON
	}
	return DataTypeYAML
}

// DataProvider is the key-value view of the loaded configuration that each section reads itself from.
// Keys are dot-separated paths, e.g. "rateLimit.window".
type DataProvider interface {
	// UseEnvVars makes values from <PREFIX>_<SECTION>_<KEY> environment variables override file values.
	UseEnvVars(prefix string)

	Set(key string, value interface{})
	SetDefault(key string, value interface{})
	IsSet(key string) bool

	SetFromFile(path string, dataType DataType) error
	SetFromReader(reader io.Reader, dataType DataType) error

	Get(key string) interface{}
	GetBool(key string) (bool, error)
	GetInt(key string) (int, error)
	GetString(key string) (string, error)
	// GetStringFromSet returns the value only if it is one of set, e.g. the rate limit alg or log format.
	GetStringFromSet(key string, set []string, ignoreCase bool) (string, error)
	GetStringSlice(key string) ([]string, error)
	GetDuration(key string) (time.Duration, error)
	GetByteSize(key string) (ByteSize, error)

	// UnmarshalKey decodes a nested value (e.g. fixtures.resources) into rawVal.
	UnmarshalKey(key string, rawVal interface{}, opts ...DecoderConfigOption) error

	// WrapKeyErr prefixes err with the full key of the value that failed.
	WrapKeyErr(key string, err error) error
}

// DecoderConfigOption tunes the mapstructure decoder used by UnmarshalKey.
type DecoderConfigOption func(*mapstructure.DecoderConfig)

// WrapKeyErr prefixes err with the key, so "must be positive" becomes "rateLimit.limit: must be positive".
func WrapKeyErr(key string, err error) error {
	return fmt.Errorf("%s: %w", key, err)
}

// WrapKeyErrIfNeeded is WrapKeyErr that keeps nil errors nil.
func WrapKeyErrIfNeeded(key string, err error) error {
	if err == nil {
		return nil
	}
	return WrapKeyErr(key, err)
}
