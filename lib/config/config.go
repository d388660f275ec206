// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the promptkeep configuration.
type Config struct {
	// Store configures the credential vault.
	Store StoreConfig `yaml:"store"`
}

// StoreConfig configures where and whether credentials are kept.
type StoreConfig struct {
	// Enabled gates all vault access. When false, every prompt is
	// answered interactively and nothing is stored.
	Enabled bool `yaml:"enabled"`

	// Path is the vault database file.
	Path string `yaml:"path"`

	// KeyPath is the age identity file protecting the vault.
	KeyPath string `yaml:"key_path"`

	// Folder is the namespace within the vault that this helper's
	// entries live in.
	Folder string `yaml:"folder"`
}

// Default returns the configuration used when no config file exists:
// vault under XDG data, key under XDG config, storing enabled.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Enabled: true,
			Path:    "${XDG_DATA_HOME:-${HOME}/.local/share}/promptkeep/vault.db",
			KeyPath: "${XDG_CONFIG_HOME:-${HOME}/.config}/promptkeep/key.age",
			Folder:  "promptkeep",
		},
	}
}

// Load loads configuration from the file named by PROMPTKEEP_CONFIG,
// or returns the defaults when the variable is not set.
func Load() (*Config, error) {
	path := os.Getenv("PROMPTKEEP_CONFIG")
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging
// over the defaults. Path fields have ${VAR} patterns expanded after
// loading; nothing else comes from the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Store.Folder == "" {
		return nil, fmt.Errorf("config: store.folder must not be empty")
	}

	cfg.expandVariables()
	return cfg, nil
}

// variablePattern matches ${VAR} and ${VAR:-default}. The default may
// itself contain a nested ${VAR}, one level deep.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^{}]*(?:\$\{[^}]*\}[^{}]*)*))?\}`)

// expandVariables expands environment references in path fields.
func (c *Config) expandVariables() {
	c.Store.Path = expandPath(c.Store.Path)
	c.Store.KeyPath = expandPath(c.Store.KeyPath)
}

func expandPath(path string) string {
	return variablePattern.ReplaceAllStringFunc(path, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		return expandPath(groups[2])
	})
}
