package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var decorateCmd = &cobra.Command{
	Use:   "decorate [file]",
	Short: "Decorate issue links in markdown content",
	Long: `Read markdown from a file (or stdin with "-" or no argument), expand
every issue link pointing at the configured GitLab host into a summary
card, and print the result to stdout.

Links whose issue cannot be fetched are left untouched.

Examples:
  notesync decorate NOTES.md
  cat NOTES.md | notesync decorate -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecorate,
}

func runDecorate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	var content []byte
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	}

	fmt.Print(a.decorator.Decorate(cmd.Context(), string(content)))
	return nil
}
