/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"fmt"
	"io"
)

// Loader fills configuration sections (server, log, rateLimit, fixtures, ...) from a DataProvider.
// Every section receives its defaults before any section reads its values.
type Loader struct {
	DataProvider DataProvider
}

// NewDefaultLoader creates a Loader backed by viper that also reads <envVarsPrefix>_* environment variables.
func NewDefaultLoader(envVarsPrefix string) *Loader {
	va := NewViperAdapter()
	va.UseEnvVars(envVarsPrefix)
	return NewLoader(va)
}

// NewLoader creates a Loader over the given provider.
func NewLoader(dp DataProvider) *Loader {
	return &Loader{DataProvider: dp}
}

// Load fills the sections from defaults and whatever the provider already holds (environment variables).
func (l *Loader) Load(cfg Config, cfgs ...Config) error {
	return l.load(append([]Config{cfg}, cfgs...))
}

// LoadFromPath reads the file at path, detecting YAML or JSON by its extension, and fills the sections.
func (l *Loader) LoadFromPath(path string, cfg Config, cfgs ...Config) error {
	return l.LoadFromFile(path, DataTypeFromPath(path), cfg, cfgs...)
}

// LoadFromFile reads the file at path in the given format and fills the sections.
func (l *Loader) LoadFromFile(path string, dataType DataType, cfg Config, cfgs ...Config) error {
	if err := l.DataProvider.SetFromFile(path, dataType); err != nil {
		return fmt.Errorf("read %s config file %q: %w", dataType, path, err)
	}
	return l.load(append([]Config{cfg}, cfgs...))
}

// LoadFromReader reads data in the given format and fills the sections.
func (l *Loader) LoadFromReader(reader io.Reader, dataType DataType, cfg Config, cfgs ...Config) error {
	if err := l.DataProvider.SetFromReader(reader, dataType); err != nil {
		return fmt.Errorf("read %s config: %w", dataType, err)
	}
	return l.load(append([]Config{cfg}, cfgs...))
}

// Two sections may share a key, so defaults go first for all of them.
func (l *Loader) load(cfgs []Config) error {
	for _, cfg := range cfgs {
		cfg.SetProviderDefaults(dataProviderFor(cfg, l.DataProvider))
	}
	for _, cfg := range cfgs {
		if err := cfg.Set(dataProviderFor(cfg, l.DataProvider)); err != nil {
			return err
		}
	}
	return nil
}
