// Package output provides formatting for classification results.
package output

import (
	"time"

	"github.com/dogtail/celerymetrics/pkg/classifier"
)

// Record pairs a classified sample with the line it came from.
type Record struct {
	// Sample is the extracted metric sample.
	Sample *classifier.MetricSample `json:"sample"`

	// Source is the file (or stream name) the line came from.
	Source string `json:"source,omitempty"`

	// LineNum is the 1-based line number within the source.
	LineNum int `json:"line_num,omitempty"`
}

// Summary provides aggregate statistics for a classification run.
type Summary struct {
	// LinesProcessed is the total number of lines read.
	LinesProcessed int `json:"lines_processed"`

	// SamplesEmitted is the number of lines that produced a sample.
	SamplesEmitted int `json:"samples_emitted"`

	// LinesUnmatched is the number of lines no rule matched.
	LinesUnmatched int `json:"lines_unmatched"`

	// ParseFailures is the number of matched lines with unparseable timestamps.
	ParseFailures int `json:"parse_failures"`

	// ByMetric counts emitted samples per metric name.
	ByMetric map[string]int `json:"by_metric,omitempty"`
}

// Metadata provides context about the run.
type Metadata struct {
	// Sources lists the inputs that were read.
	Sources []string `json:"sources,omitempty"`

	// Timezone names the zone timestamps were interpreted in.
	Timezone string `json:"timezone,omitempty"`

	// StartedAt is when classification began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// Report is the complete output of a classification run.
type Report struct {
	Summary  Summary  `json:"summary"`
	Records  []Record `json:"records,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// NewReport creates an empty report with the by-metric map initialized.
func NewReport(timezone string) *Report {
	return &Report{
		Summary: Summary{
			ByMetric: make(map[string]int),
		},
		Metadata: Metadata{
			Timezone:  timezone,
			StartedAt: time.Now(),
		},
	}
}

// Add records a processed line's outcome.
func (r *Report) Add(sample *classifier.MetricSample, source string, lineNum int) {
	r.Summary.LinesProcessed++
	if sample == nil {
		r.Summary.LinesUnmatched++
		return
	}
	r.Summary.SamplesEmitted++
	r.Summary.ByMetric[sample.Metric]++
	r.Records = append(r.Records, Record{
		Sample:  sample,
		Source:  source,
		LineNum: lineNum,
	})
}

// AddParseFailure records a line that matched a rule but had a bad timestamp.
func (r *Report) AddParseFailure() {
	r.Summary.LinesProcessed++
	r.Summary.ParseFailures++
}

// AddSource records an input source once.
func (r *Report) AddSource(source string) {
	for _, s := range r.Metadata.Sources {
		if s == source {
			return
		}
	}
	r.Metadata.Sources = append(r.Metadata.Sources, source)
}

// Finish stamps the run duration.
func (r *Report) Finish() {
	r.Metadata.Duration = time.Since(r.Metadata.StartedAt)
}

// HasSamples returns true if any sample was emitted.
func (r *Report) HasSamples() bool {
	return r.Summary.SamplesEmitted > 0
}

// Samples returns the emitted samples in order.
func (r *Report) Samples() []*classifier.MetricSample {
	samples := make([]*classifier.MetricSample, 0, len(r.Records))
	for _, rec := range r.Records {
		samples = append(samples, rec.Sample)
	}
	return samples
}
