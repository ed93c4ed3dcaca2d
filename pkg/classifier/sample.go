// Package classifier turns celery worker and beat log lines into metric samples.
package classifier

// MetricSample is a single counter observation extracted from one log line.
// It is the payload handed to a metrics collector.
type MetricSample struct {
	// Metric is the dotted metric name, e.g. "celery.success.entity.tasks.add_love".
	Metric string `json:"metric"`

	// Timestamp is the observation time as decimal epoch seconds.
	Timestamp string `json:"timestamp"`

	// Count is the observation count (always 1, one sample per line).
	Count int `json:"count"`

	// Attributes carries the fixed counter attributes.
	Attributes map[string]string `json:"attributes"`
}

// newAttributes returns a fresh attribute map for a sample.
// Each sample owns its map so callers may mutate results freely.
func newAttributes() map[string]string {
	return map[string]string{
		"metric_type": "counter",
		"unit":        "request",
	}
}
