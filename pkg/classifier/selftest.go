package classifier

import (
	"fmt"
	"strconv"
	"time"
)

// Example is one literal log line with the sample it should produce.
// Want is nil when the line should produce no sample.
type Example struct {
	Name string
	Line string
	Want *MetricSample
}

// Examples returns the built-in check lines with expected samples computed
// in the given location. Epoch values depend on the location, so they are
// derived rather than hardcoded.
func Examples(loc *time.Location) []Example {
	epoch := func(year int, month time.Month, day, hour, min, sec int) string {
		return strconv.FormatInt(time.Date(year, month, day, hour, min, sec, 0, loc).Unix(), 10)
	}

	return []Example{
		{
			Name: "task succeeded",
			Line: "[2013-02-09 15:20:43,779: INFO/MainProcess] Task entity.tasks.add_love[c8411104-ee40-49e8-ab4d-af1be60f93aa] succeeded in 0.169150829315s: None",
			Want: &MetricSample{
				Metric:     "celery.success.entity.tasks.add_love",
				Timestamp:  epoch(2013, time.February, 9, 15, 20, 43),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "task received",
			Line: "[2015-07-20 18:25:59,371: INFO/MainProcess] Received task: appratings.tasks.add[6cd42812-7a9e-49d5-9bbd-1174233441cb]",
			Want: &MetricSample{
				Metric:     "celery.received.appratings.tasks.add",
				Timestamp:  epoch(2015, time.July, 20, 18, 25, 59),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "task received from broker",
			Line: "[2013-02-09 15:20:44,261: INFO/MainProcess] Got task from broker: user.tasks.sync_follow_open_graph[aa7d0eec-5416-4d15-b36b-10f2d85375e9] eta:[2013-02-09 15:20:47.256882]",
			Want: &MetricSample{
				Metric:     "celery.received.user.tasks.sync_follow_open_graph",
				Timestamp:  epoch(2013, time.February, 9, 15, 20, 44),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "beat sending due task",
			Line: "[2015-07-22 16:14:09,102: INFO/Beat] Scheduler: Sending due task add-every-hour (appratings.tasks.add)",
			Want: &MetricSample{
				Metric:     "celery.sent.appratings.tasks.add",
				Timestamp:  epoch(2015, time.July, 22, 16, 14, 9),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "beat writing entries",
			Line: "[2015-07-22 16:14:10,206: INFO/MainProcess] Writing entries...",
			Want: &MetricSample{
				Metric:     "celery.writing",
				Timestamp:  epoch(2015, time.July, 22, 16, 14, 10),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "beat starting",
			Line: "[2015-07-22 16:13:58,000: INFO/Beat] beat: Starting...",
			Want: &MetricSample{
				Metric:     "celery.beat",
				Timestamp:  epoch(2015, time.July, 22, 16, 13, 58),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "schedule changed",
			Line: "[2015-07-22 16:14:00,515: INFO/Beat] DatabaseScheduler: Schedule changed.",
			Want: &MetricSample{
				Metric:     "celery.schedule",
				Timestamp:  epoch(2015, time.July, 22, 16, 14, 0),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "unclassified warning",
			Line: "[2013-02-06 14:02:02,435: WARNING/MainProcess] len() on an unsliced queryset is not allowed",
			Want: &MetricSample{
				Metric:     "celery.error",
				Timestamp:  epoch(2013, time.February, 6, 14, 2, 2),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "truncated warning line",
			Line: "[2013-02-06 14:02:02,435: WARNING",
			Want: &MetricSample{
				Metric:     "celery.error",
				Timestamp:  epoch(2013, time.February, 6, 14, 2, 2),
				Count:      1,
				Attributes: newAttributes(),
			},
		},
		{
			Name: "no leading timestamp",
			Line: "Traceback (most recent call last):",
			Want: nil,
		},
		{
			Name: "empty line",
			Line: "",
			Want: nil,
		},
	}
}

// SelfTest runs every built-in example through the classifier and returns a
// description of each mismatch. An empty result means all examples passed.
func (c *Classifier) SelfTest() []string {
	var failures []string

	for _, ex := range Examples(c.loc) {
		got, err := c.Classify(ex.Line)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unexpected error: %v", ex.Name, err))
			continue
		}
		if !sampleEqual(got, ex.Want) {
			failures = append(failures, fmt.Sprintf("%s: got %v, want %v", ex.Name, got, ex.Want))
		}
	}

	return failures
}

// sampleEqual compares two samples field by field, treating two nils as equal.
func sampleEqual(a, b *MetricSample) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Metric != b.Metric || a.Timestamp != b.Timestamp || a.Count != b.Count {
		return false
	}
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, v := range a.Attributes {
		if b.Attributes[k] != v {
			return false
		}
	}
	return true
}
