package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long: `Fetch issues for the configured scope and reconcile each one against
the notes vault: new issues create files, changed issues get their
frontmatter merged in place, unchanged issues are skipped.

Examples:
  # Sync with the default config file
  notesync sync

  # Sync with an explicit config
  notesync sync --config ./notesync.yaml`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	res, err := a.sync.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to update issues: %w", err)
	}

	fmt.Printf("Synced %d issues: %d created, %d updated, %d skipped, %d failed (%.2fs)\n",
		res.Issues, res.Created, res.Updated, res.Skipped, res.Failed, res.Duration.Seconds())
	if res.Purged > 0 {
		fmt.Printf("Purged %d existing notes before writing\n", res.Purged)
	}
	return nil
}
