package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "%d lines, %d samples, %d unmatched, %d parse failures\n",
		report.Summary.LinesProcessed,
		report.Summary.SamplesEmitted,
		report.Summary.LinesUnmatched,
		report.Summary.ParseFailures)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	for _, rec := range report.Records {
		fmt.Fprintf(w, "%s %s %d metric_type=%s unit=%s",
			rec.Sample.Metric,
			rec.Sample.Timestamp,
			rec.Sample.Count,
			rec.Sample.Attributes["metric_type"],
			rec.Sample.Attributes["unit"])
		if f.opts.Verbose && rec.Source != "" {
			fmt.Fprintf(w, "  (%s:%d)", rec.Source, rec.LineNum)
		}
		fmt.Fprintln(w)
	}

	if len(report.Records) > 0 {
		fmt.Fprintln(w, "---")
	}

	fmt.Fprintf(w, "Summary: %d lines, %d samples, %d unmatched, %d parse failures\n",
		report.Summary.LinesProcessed,
		report.Summary.SamplesEmitted,
		report.Summary.LinesUnmatched,
		report.Summary.ParseFailures)

	if f.opts.Verbose {
		f.formatByMetric(report, w)
		for _, src := range report.Metadata.Sources {
			fmt.Fprintf(w, "Source: %s\n", src)
		}
		fmt.Fprintf(w, "Timezone: %s\n", report.Metadata.Timezone)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}

func (f *TextFormatter) formatByMetric(report *Report, w io.Writer) {
	if len(report.Summary.ByMetric) == 0 {
		return
	}

	names := make([]string, 0, len(report.Summary.ByMetric))
	for name := range report.Summary.ByMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, report.Summary.ByMetric[name])
	}
}
