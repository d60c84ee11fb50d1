/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import "reflect"

// Config is a common interface for configuration objects that may be used by Loader.
type Config interface {
	SetProviderDefaults(dp DataProvider)
	Set(dp DataProvider) error
}

// KeyPrefixProvider is an interface for providing key prefix that will be used for configuration parameters.
type KeyPrefixProvider interface {
	KeyPrefix() string
}

// dataProviderFor returns dp prefixed with the key prefix of cfg, if it has one.
func dataProviderFor(cfg interface{}, dp DataProvider) DataProvider {
	if kp, ok := cfg.(KeyPrefixProvider); ok && kp.KeyPrefix() != "" {
		return NewKeyPrefixedDataProvider(dp, kp.KeyPrefix())
	}
	return dp
}

// CallSetProviderDefaultsForFields calls SetProviderDefaults for every exported non-nil field
// of the struct pointed to by obj that implements Config.
func CallSetProviderDefaultsForFields(obj interface{}, dp DataProvider) {
	_ = forEachConfigField(obj, func(c Config) error {
		c.SetProviderDefaults(dataProviderFor(c, dp))
		return nil
	})
}

// CallSetForFields calls Set for every exported non-nil field of the struct pointed to by obj
// that implements Config. It stops on the first error.
func CallSetForFields(obj interface{}, dp DataProvider) error {
	return forEachConfigField(obj, func(c Config) error {
		return c.Set(dataProviderFor(c, dp))
	})
}

func forEachConfigField(obj interface{}, fn func(c Config) error) error {
	el := reflect.ValueOf(obj).Elem()
	for i := 0; i < el.NumField(); i++ {
		if !el.Type().Field(i).IsExported() {
			continue
		}
		field := el.Field(i)
		if field.Kind() == reflect.Ptr && field.IsNil() {
			continue
		}
		if c, ok := field.Interface().(Config); ok {
			if err := fn(c); err != nil {
				return err
			}
		}
	}
	return nil
}
