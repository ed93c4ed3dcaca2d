package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogtail/celerymetrics/pkg/config"
	"github.com/dogtail/celerymetrics/pkg/reader"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a celerymetrics configuration file without classifying anything.

Checks:
  - YAML syntax
  - Time zone resolvability
  - Collector URL, trigger, and timeout
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Timezone:      %s\n", cfg.Timezone)
	fmt.Fprintf(out, "  Metric prefix: %s\n", cfg.MetricPrefix)
	if cfg.Collector != nil {
		fmt.Fprintf(out, "  Collector:     %s (trigger: %s, timeout: %s)\n",
			cfg.Collector.URL, cfg.Collector.Trigger, cfg.Collector.Timeout)
	}

	// Check if log sources exist (warnings only)
	if len(cfg.LogSources) == 0 {
		fmt.Fprintf(out, "\nNo log_sources configured; classify will read stdin or explicit files\n")
		return nil
	}

	files, err := reader.ExpandSources(cfg.LogSources)
	if err != nil {
		fmt.Fprintf(out, "\nWarning: Error expanding log source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(out, "\nWarning: No files match log source patterns\n")
	} else {
		fmt.Fprintf(out, "\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}

	return nil
}
