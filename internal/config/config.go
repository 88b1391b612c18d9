// Package config provides configuration loading for notesync.
//
// Settings come from a YAML config file overridden by NOTESYNC_-prefixed
// environment variables, over hardcoded defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/notesync/internal/source"
	"github.com/fyrsmithlabs/notesync/internal/telemetry"
)

// Config holds the complete notesync configuration.
type Config struct {
	GitLab    GitLabConfig     `koanf:"gitlab"`
	Vault     VaultConfig      `koanf:"vault"`
	Refresh   RefreshConfig    `koanf:"refresh"`
	Server    ServerConfig     `koanf:"server"`
	Log       LogConfig        `koanf:"log"`
	Telemetry telemetry.Config `koanf:"telemetry"`
}

// GitLabConfig holds tracker connection and scope settings.
type GitLabConfig struct {
	URL     string `koanf:"url"`     // tracker root, e.g. https://gitlab.com
	Token   string `koanf:"token"`   // static bearer token, assumed valid
	Level   string `koanf:"level"`   // project | group | personal | custom
	Targets string `koanf:"targets"` // identifier, or "P:id, G:id" list for custom
	Filter  string `koanf:"filter"`  // raw query string appended to issue requests
}

// VaultConfig holds note output settings.
type VaultConfig struct {
	Dir      string `koanf:"dir"`
	Template string `koanf:"template"` // optional Handlebars template file
	Purge    bool   `koanf:"purge"`    // delete every note before writing
}

// RefreshConfig holds scheduled trigger settings.
type RefreshConfig struct {
	Interval  string `koanf:"interval"` // minutes, or "off"
	OnStartup bool   `koanf:"on_startup"`
}

// ServerConfig holds the HTTP surface bind address.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // zap level name
	Format string `koanf:"format"` // "json" or "console"
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		GitLab: GitLabConfig{
			URL:   "https://gitlab.com",
			Level: source.LevelProject,
		},
		Vault: VaultConfig{
			Dir: "./notes",
		},
		Refresh: RefreshConfig{
			Interval: "off",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 9340,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// IntervalMinutes parses the refresh interval. "off", "0" and empty all
// disable scheduled refresh.
func (r RefreshConfig) IntervalMinutes() (int, error) {
	raw := strings.ToLower(strings.TrimSpace(r.Interval))
	switch raw {
	case "", "off", "0":
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid refresh interval %q (minutes or \"off\")", r.Interval)
	}
	return n, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.GitLab.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid gitlab url %q", c.GitLab.URL)
	}
	if c.GitLab.Token == "" {
		return errors.New("gitlab token is required")
	}

	switch c.GitLab.Level {
	case source.LevelProject, source.LevelGroup, source.LevelPersonal, source.LevelCustom:
	default:
		return fmt.Errorf("invalid gitlab level %q (project, group, personal or custom)", c.GitLab.Level)
	}
	if c.GitLab.Level != source.LevelPersonal && strings.TrimSpace(c.GitLab.Targets) == "" {
		return fmt.Errorf("gitlab targets required for level %q", c.GitLab.Level)
	}

	if c.Vault.Dir == "" {
		return errors.New("vault dir is required")
	}

	if _, err := c.Refresh.IntervalMinutes(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
