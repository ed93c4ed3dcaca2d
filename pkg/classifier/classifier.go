package classifier

import (
	"time"
)

// DefaultMetricPrefix is the leading segment of every emitted metric name.
const DefaultMetricPrefix = "celery"

// Classifier matches log lines against an ordered rule table and extracts
// metric samples. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	loc    *time.Location
	prefix string
	rules  []rule
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithLocation sets the time zone used to interpret log timestamps.
// Defaults to the process local zone, matching celery's own log output.
func WithLocation(loc *time.Location) Option {
	return func(c *Classifier) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithMetricPrefix overrides the leading metric name segment.
func WithMetricPrefix(prefix string) Option {
	return func(c *Classifier) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// New creates a Classifier with the default rule table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		loc:    time.Local,
		prefix: DefaultMetricPrefix,
		rules:  defaultRules(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the time zone the classifier parses timestamps in.
func (c *Classifier) Location() *time.Location {
	return c.loc
}

// Classify matches a line against the rule table in priority order and
// returns the extracted sample for the first matching rule.
//
// A line no rule matches (no leading bracketed timestamp) yields (nil, nil):
// unmatched input is a defined outcome, not an error. A non-nil error is
// returned only when a rule matched but the captured timestamp text does not
// parse, which is an input-format violation the caller should report.
func (c *Classifier) Classify(line string) (*MetricSample, error) {
	for _, r := range c.rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ts, err := epochSeconds(m[1], c.loc)
		if err != nil {
			return nil, err
		}

		metric := c.prefix + "." + r.kind
		if r.taskGroup > 0 {
			metric += "." + m[r.taskGroup]
		}

		return &MetricSample{
			Metric:     metric,
			Timestamp:  ts,
			Count:      1,
			Attributes: newAttributes(),
		}, nil
	}

	return nil, nil
}
