package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (NOTESYNC_GITLAB_TOKEN, NOTESYNC_VAULT_DIR, ...)
//  2. YAML config file (default ~/.config/notesync/config.yaml)
//  3. Hardcoded defaults
//
// A missing config file is not an error; defaults plus environment apply.
//
// Environment variables map to config keys by lowercasing, stripping the
// NOTESYNC_ prefix, and replacing the first underscore with a dot:
//
//	NOTESYNC_GITLAB_TOKEN      -> gitlab.token
//	NOTESYNC_REFRESH_ON_STARTUP -> refresh.on_startup
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "notesync", "config.yaml")
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("NOTESYNC_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// envTransform maps NOTESYNC_SECTION_FIELD to section.field. Only the
// first underscore becomes a separator, so compound field names such as
// on_startup survive.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "NOTESYNC_"))
	if section, field, found := strings.Cut(s, "_"); found {
		return section + "." + field
	}
	return s
}
