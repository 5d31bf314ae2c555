// Package config loads YAML configuration files, expanding ${VAR}
// references from the process environment before unmarshalling.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by config types that check themselves after
// loading.
type Validator interface {
	Validate() error
}

// Load reads filename, expands environment variables, and unmarshals
// into target. When target implements Validator its Validate method
// runs before Load returns.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config %s: %w", filename, err)
		}
	}
	return nil
}

// LoadWithDefaults is Load with a fallback: when filename does not
// exist, defaultFile is loaded instead.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile == "" {
			return fmt.Errorf("config file not found: %s", filename)
		}
		return Load(defaultFile, target)
	}
	return Load(filename, target)
}
