// Notesync imports GitLab issues into a local markdown notes vault and
// decorates issue links with fetched summary cards.
//
// Usage:
//
//	# One-shot synchronization
//	notesync sync
//
//	# Daemon mode: scheduled refresh plus the HTTP surface
//	notesync serve
//
//	# Decorate a markdown file (or stdin with "-")
//	notesync decorate NOTES.md
//
// Configuration is loaded from ~/.config/notesync/config.yaml overridden
// by NOTESYNC_-prefixed environment variables. See internal/config.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/config"
	"github.com/fyrsmithlabs/notesync/internal/decorate"
	"github.com/fyrsmithlabs/notesync/internal/gitlab"
	"github.com/fyrsmithlabs/notesync/internal/logging"
	issuesync "github.com/fyrsmithlabs/notesync/internal/sync"
	"github.com/fyrsmithlabs/notesync/internal/template"
	"github.com/fyrsmithlabs/notesync/internal/vault"
)

// configPath is the --config persistent flag value.
var configPath string

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Sync GitLab issues into a markdown notes vault",
	Long: `notesync imports issues from a GitLab project, group, personal scope or
a custom mixed list into local markdown note files with YAML frontmatter,
reconciling idempotently on every run. It can also decorate issue links
inside markdown content with live summary cards.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notesync by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/notesync/config.yaml)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decorateCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles the wired services shared by the subcommands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    gitlab.Client
	sync      issuesync.Service
	decorator *decorate.Decorator
}

// buildApp loads configuration and wires every service.
func buildApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		zap.String("gitlab_url", cfg.GitLab.URL),
		zap.String("token", logging.Redact(cfg.GitLab.Token)),
		zap.String("level", cfg.GitLab.Level),
		zap.String("vault_dir", cfg.Vault.Dir))

	client, err := gitlab.NewClient(&gitlab.Config{
		BaseURL: cfg.GitLab.URL,
		Token:   cfg.GitLab.Token,
	}, logger.Named("gitlab"))
	if err != nil {
		return nil, err
	}

	store, err := vault.NewStore(cfg.Vault.Dir, logger.Named("vault"))
	if err != nil {
		return nil, err
	}

	renderer, err := template.NewRenderer(cfg.Vault.Template, logger.Named("template"))
	if err != nil {
		return nil, err
	}

	syncSvc, err := issuesync.New(&issuesync.Config{
		Level:   cfg.GitLab.Level,
		Targets: cfg.GitLab.Targets,
		Filter:  cfg.GitLab.Filter,
		Purge:   cfg.Vault.Purge,
	}, client, store, renderer, nil, logger.Named("sync"))
	if err != nil {
		return nil, err
	}

	decorator, err := decorate.New(cfg.GitLab.URL, client, logger.Named("decorate"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		sync:      syncSvc,
		decorator: decorator,
	}, nil
}
