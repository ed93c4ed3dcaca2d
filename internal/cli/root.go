// Package cli provides the command-line interface for celerymetrics.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dogtail/celerymetrics/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "celerymetrics",
		Short: "Extract metric samples from celery log lines",
		Long: `celerymetrics turns celery worker and beat log lines into counter samples
for a metrics backend.

Each line matching a known event shape (task succeeded, task received,
beat dispatch, schedule maintenance) produces one sample named
celery.<kind>[.<task>] with the line's timestamp as epoch seconds. Lines
with a leading timestamp but no known shape count as celery.error; lines
without one produce nothing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewClassifyCommand())
	rootCmd.AddCommand(commands.NewTailCommand())
	rootCmd.AddCommand(commands.NewSelfTestCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
