package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter renders reports as machine-readable JSON, e.g. for piping
// a classification run into jq or archiving it next to the logs.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// quietSummary is the compact wire shape for quiet runs: the line counters
// plus per-metric sample counts, mirroring the text formatter's one-liner.
type quietSummary struct {
	Lines         int            `json:"lines"`
	Samples       int            `json:"samples"`
	Unmatched     int            `json:"unmatched"`
	ParseFailures int            `json:"parse_failures"`
	ByMetric      map[string]int `json:"by_metric,omitempty"`
}

// Format renders the report as indented JSON. Quiet mode drops the sample
// records and emits only the counters and per-metric totals.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if f.opts.Quiet {
		return enc.Encode(quietSummary{
			Lines:         report.Summary.LinesProcessed,
			Samples:       report.Summary.SamplesEmitted,
			Unmatched:     report.Summary.LinesUnmatched,
			ParseFailures: report.Summary.ParseFailures,
			ByMetric:      report.Summary.ByMetric,
		})
	}

	return enc.Encode(report)
}
