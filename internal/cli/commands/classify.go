package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dogtail/celerymetrics/internal/logging"
	"github.com/dogtail/celerymetrics/pkg/classifier"
	"github.com/dogtail/celerymetrics/pkg/collector"
	"github.com/dogtail/celerymetrics/pkg/config"
	"github.com/dogtail/celerymetrics/pkg/output"
	"github.com/dogtail/celerymetrics/pkg/reader"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ClassifyOptions holds command-line options for the classify command.
type ClassifyOptions struct {
	Config       string
	Output       string
	Timezone     string
	MetricPrefix string
	Verbose      bool
	Quiet        bool
	LogLevel     string

	// Collector options
	CollectorURL     string
	CollectorToken   string
	CollectorTrigger string
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand() *cobra.Command {
	opts := &ClassifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [log-file...]",
		Short: "Classify log lines into metric samples",
		Long: `Read celery log files (or stdin when no files are given) and emit one
counter sample per recognized line.

Sample names are celery.<kind> with the task name appended when the line
carries one, e.g. celery.success.app.tasks.add. Lines with a leading
bracketed timestamp but no recognized shape count as celery.error.

Exit codes:
  0 - Classification completed
  2 - Configuration or runtime error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file path")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "Time zone for log timestamps (local|utc|IANA name)")
	cmd.Flags().StringVar(&opts.MetricPrefix, "metric-prefix", "", "Leading metric name segment (default celery)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show source locations and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no samples")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Diagnostic log level (debug|info|warn|error)")

	// Collector flags
	cmd.Flags().StringVar(&opts.CollectorURL, "collector-url", "", "Metrics intake endpoint URL")
	cmd.Flags().StringVar(&opts.CollectorToken, "collector-token", "", "Bearer token for collector auth")
	cmd.Flags().StringVar(&opts.CollectorTrigger, "collector-trigger", "", "When to forward samples (always|on_samples|never)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, opts *ClassifyOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logging.Init(opts.Output == "json", logging.ParseLevel(opts.LogLevel))

	cfg, loc, err := loadRunConfig(ctx, opts.Config, opts.Timezone, opts.MetricPrefix)
	if err != nil {
		return err
	}

	source, sources, err := openSource(cmd, args, cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	c := classifier.New(
		classifier.WithLocation(loc),
		classifier.WithMetricPrefix(cfg.MetricPrefix),
	)

	report := output.NewReport(cfg.Timezone)
	for _, s := range sources {
		report.AddSource(s)
	}

	if err := classifyAll(ctx, c, source, report); err != nil {
		return err
	}
	report.Finish()

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Forward samples (failures logged but don't fail the run)
	forwardSamples(ctx, cfg, opts, report)

	return nil
}

// classifyAll drains the source through the classifier into the report.
func classifyAll(ctx context.Context, c *classifier.Classifier, source reader.LineSource, report *output.Report) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading log source: %w", err)
		}

		sample, err := c.Classify(line.Text)
		if err != nil {
			// Matched line with an unparseable timestamp: report, keep going.
			slog.Error("timestamp parse failure",
				"source", line.Source,
				"line", line.Num,
				"error", err)
			report.AddParseFailure()
			continue
		}

		report.Add(sample, line.Source, line.Num)
	}
}

// loadRunConfig loads the optional config file and applies flag overrides.
func loadRunConfig(ctx context.Context, path, timezone, prefix string) (*config.Config, *time.Location, error) {
	var cfg *config.Config
	var err error

	if path != "" {
		cfg, err = config.Load(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
		if err := config.Validate(cfg); err != nil {
			return nil, nil, err
		}
	}

	if timezone != "" {
		cfg.Timezone = timezone
	}
	loc, err := config.ResolveLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, err
	}

	if prefix != "" {
		cfg.MetricPrefix = prefix
	}

	return cfg, loc, nil
}

// openSource picks the input: explicit args, config log_sources, or stdin.
func openSource(cmd *cobra.Command, args []string, cfg *config.Config) (reader.LineSource, []string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.LogSources
	}

	if len(patterns) == 0 {
		return reader.NewReaderSource(cmd.InOrStdin(), "stdin"), []string{"stdin"}, nil
	}

	files, err := reader.ExpandSources(patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no log files matched patterns: %v", patterns)
	}

	return reader.NewFileSource(files), files, nil
}

func createFormatter(name string, opts output.FormatOptions) (output.Formatter, error) {
	switch name {
	case "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}

// forwardSamples posts the report's samples to the configured collector.
func forwardSamples(ctx context.Context, cfg *config.Config, opts *ClassifyOptions, report *output.Report) {
	cc := resolveCollector(cfg, opts.CollectorURL, opts.CollectorToken, opts.CollectorTrigger)
	if cc == nil {
		return
	}

	if !shouldForward(cc.Trigger, report.HasSamples()) {
		return
	}

	client := collector.NewClient()
	resp := client.Send(ctx, report.Samples(), collector.SendOptions{
		URL:     cc.URL,
		Token:   cc.Token,
		Timeout: cc.Timeout.Std(),
	})

	name := cc.Name
	if name == "" {
		name = cc.URL
	}

	if resp.Success() {
		slog.Info("samples forwarded",
			"collector", name,
			"samples", report.Summary.SamplesEmitted,
			"status", resp.StatusCode,
			"duration", resp.Duration)
	} else {
		slog.Error("forwarding failed",
			"collector", name,
			"error", resp.Error)
	}
}

// resolveCollector merges the config collector section with CLI overrides.
func resolveCollector(cfg *config.Config, url, token, trigger string) *config.CollectorConfig {
	cc := cfg.Collector
	if url != "" {
		cc = &config.CollectorConfig{
			Name:    "cli",
			URL:     url,
			Token:   token,
			Trigger: config.Trigger(trigger),
			Timeout: config.DefaultCollectorTimeout,
		}
	}
	if cc == nil {
		return nil
	}
	if trigger != "" {
		cc.Trigger = config.Trigger(trigger)
	}
	if cc.Trigger == "" {
		cc.Trigger = config.DefaultCollectorTrigger
	}
	if cc.Timeout == 0 {
		cc.Timeout = config.DefaultCollectorTimeout
	}
	return cc
}

// shouldForward determines if samples should be posted for this trigger.
func shouldForward(trigger config.Trigger, hasSamples bool) bool {
	switch trigger {
	case config.TriggerAlways:
		return true
	case config.TriggerNever:
		return false
	case config.TriggerOnSamples:
		return hasSamples
	default:
		return hasSamples
	}
}
