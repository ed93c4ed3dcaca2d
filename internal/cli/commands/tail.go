package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dogtail/celerymetrics/internal/logging"
	"github.com/dogtail/celerymetrics/pkg/classifier"
	"github.com/dogtail/celerymetrics/pkg/collector"
	"github.com/dogtail/celerymetrics/pkg/config"
	"github.com/dogtail/celerymetrics/pkg/tailer"
)

// TailOptions holds command-line options for the tail command.
type TailOptions struct {
	Config       string
	Output       string
	Timezone     string
	MetricPrefix string
	FromStart    bool
	LogLevel     string

	// Collector options
	CollectorURL     string
	CollectorToken   string
	CollectorTrigger string
}

// NewTailCommand creates the tail command.
func NewTailCommand() *cobra.Command {
	opts := &TailOptions{}

	cmd := &cobra.Command{
		Use:   "tail <log-file>",
		Short: "Follow a log file and classify appended lines",
		Long: `Follow a live celery log file and emit a metric sample for every
recognized line as it is written.

Samples are printed to stdout (one per line) and, when a collector is
configured, forwarded individually. Rotation by truncation is handled;
stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file path")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "Time zone for log timestamps (local|utc|IANA name)")
	cmd.Flags().StringVar(&opts.MetricPrefix, "metric-prefix", "", "Leading metric name segment (default celery)")
	cmd.Flags().BoolVar(&opts.FromStart, "from-start", false, "Read the whole existing file before following")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Diagnostic log level (debug|info|warn|error)")

	// Collector flags
	cmd.Flags().StringVar(&opts.CollectorURL, "collector-url", "", "Metrics intake endpoint URL")
	cmd.Flags().StringVar(&opts.CollectorToken, "collector-token", "", "Bearer token for collector auth")
	cmd.Flags().StringVar(&opts.CollectorTrigger, "collector-trigger", "", "When to forward samples (always|on_samples|never)")

	return cmd
}

func runTail(cmd *cobra.Command, args []string, opts *TailOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Init(opts.Output == "json", logging.ParseLevel(opts.LogLevel))

	cfg, loc, err := loadRunConfig(ctx, opts.Config, opts.Timezone, opts.MetricPrefix)
	if err != nil {
		return err
	}

	c := classifier.New(
		classifier.WithLocation(loc),
		classifier.WithMetricPrefix(cfg.MetricPrefix),
	)

	cc := resolveCollector(cfg, opts.CollectorURL, opts.CollectorToken, opts.CollectorTrigger)
	var client *collector.Client
	if cc != nil && cc.Trigger != config.TriggerNever {
		client = collector.NewClient()
	}

	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)

	var tailerOpts []tailer.Option
	if opts.FromStart {
		tailerOpts = append(tailerOpts, tailer.FromStart())
	}

	t, err := tailer.New(args[0], tailerOpts...)
	if err != nil {
		return err
	}

	t.OnLine = func(line string) {
		sample, err := c.Classify(line)
		if err != nil {
			slog.Error("timestamp parse failure", "source", args[0], "error", err)
			return
		}
		if sample == nil {
			return
		}

		if opts.Output == "json" {
			if err := encoder.Encode(sample); err != nil {
				slog.Error("writing sample", "error", err)
			}
		} else {
			fmt.Fprintf(out, "%s %s %d metric_type=%s unit=%s\n",
				sample.Metric, sample.Timestamp, sample.Count,
				sample.Attributes["metric_type"], sample.Attributes["unit"])
		}

		if client != nil {
			resp := client.Send(ctx, []*classifier.MetricSample{sample}, collector.SendOptions{
				URL:     cc.URL,
				Token:   cc.Token,
				Timeout: cc.Timeout.Std(),
			})
			if !resp.Success() {
				slog.Error("forwarding failed", "collector", cc.URL, "error", resp.Error)
			}
		}
	}
	t.OnError = func(err error) {
		slog.Warn("tail error", "source", args[0], "error", err)
	}

	slog.Info("following log file", "path", args[0], "timezone", cfg.Timezone)

	err = t.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil // interrupted, clean exit
	}
	return err
}
