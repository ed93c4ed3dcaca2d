package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogtail/celerymetrics/pkg/classifier"
	"github.com/dogtail/celerymetrics/pkg/config"
)

// SelfTestOptions holds command-line options for the selftest command.
type SelfTestOptions struct {
	Timezone string
}

// NewSelfTestCommand creates the selftest command.
func NewSelfTestCommand() *cobra.Command {
	opts := &SelfTestOptions{}

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in classification checks",
		Long: `Run a fixed set of example log lines through the classifier and compare
the results against the expected samples.

Exit codes:
  0 - All examples produced the expected samples
  1 - One or more examples failed
  2 - Configuration or runtime error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfTest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "Time zone for log timestamps (local|utc|IANA name)")

	return cmd
}

func runSelfTest(cmd *cobra.Command, opts *SelfTestOptions) error {
	loc, err := config.ResolveLocation(opts.Timezone)
	if err != nil {
		return err
	}

	c := classifier.New(classifier.WithLocation(loc))
	examples := classifier.Examples(c.Location())
	failures := c.SelfTest()

	out := cmd.OutOrStdout()

	if len(failures) == 0 {
		fmt.Fprintf(out, "Self test passed: %d examples\n", len(examples))
		return nil
	}

	fmt.Fprintf(out, "Self test failed: %d of %d examples\n", len(failures), len(examples))
	for _, f := range failures {
		fmt.Fprintf(out, "  - %s\n", f)
	}

	ExitCode = 1
	return nil
}
