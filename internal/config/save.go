package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Path returns the file Save writes to: the file the config was loaded
// from, or config.yaml in the user's config directory.
func (c *Config) Path() string {
	if c.File != "" {
		return c.File
	}
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save validates the config and writes it to Path.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("not saving invalid config: %w", err)
	}
	return c.SaveTo(c.Path())
}

// SaveTo writes the config to a specific path. The file is replaced in one
// step so a failed write leaves the previous settings intact.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
