// Package config loads JSON configuration files so that each component can
// unmarshal the parts it cares about.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// JsonConfig holds the raw bytes of a JSON config file.
type JsonConfig struct {
	// Path the config was read from.
	Path string
	Raw  []byte

	sections map[string]json.RawMessage
}

// NewJsonConfig reads the JSON file at path. Relative paths are tried
// against the working directory first and the project root second.
func NewJsonConfig(path string) (*JsonConfig, error) {
	resolved, err := resolve(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s does not contain valid JSON", resolved)
	}
	return &JsonConfig{Path: resolved, Raw: raw}, nil
}

// Unmarshal decodes the whole file into v.
func (c *JsonConfig) Unmarshal(v any) error {
	if err := json.Unmarshal(c.Raw, v); err != nil {
		return fmt.Errorf("could not parse %s: %w", c.Path, err)
	}
	return nil
}

// Section decodes the top-level object stored under key into v. A missing
// key leaves v untouched, so callers can pre-populate defaults.
func (c *JsonConfig) Section(key string, v any) error {
	if c.sections == nil {
		c.sections = map[string]json.RawMessage{}
		if err := c.Unmarshal(&c.sections); err != nil {
			c.sections = nil
			return err
		}
	}
	raw, ok := c.sections[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("could not parse %q in %s: %w", key, c.Path, err)
	}
	return nil
}

func resolve(path string) (string, error) {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path, err
	}

	_, b, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("could not retrieve project root")
	}
	// This file lives at projectRoot/scripty/config
	fromRoot := filepath.Join(filepath.Dir(b), "..", "..", path)
	if _, err := os.Stat(fromRoot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config file %s not found: %w", path, fs.ErrNotExist)
		}
		return "", err
	}
	return fromRoot, nil
}
