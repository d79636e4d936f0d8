package config

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config.
func ShowAll(cfg Config) []KeyInfo {
	result := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return result
}

// SetKey validates value for key and writes it to the config file at path.
func SetKey(path, key, value string) error {
	return setKey(newFileBackend(path), key, value)
}

func setKey(b ConfigBackend, key, value string) error {
	s, ok := lookupSpec(key)
	if !ok {
		return goerr.New("unknown config key", goerr.V("key", key))
	}
	if _, err := s.parse(value); err != nil {
		return goerr.Wrap(err, "invalid value", goerr.V("key", key), goerr.V("type", s.typ.String()))
	}
	return b.SetString(key, value)
}

// UnsetKey removes key from the config file at path so its default applies.
func UnsetKey(path, key string) error {
	if _, ok := lookupSpec(key); !ok {
		return goerr.New("unknown config key", goerr.V("key", key))
	}
	return newFileBackend(path).Delete(key)
}

// ValidKeys returns the list of config key names.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	return keys
}
