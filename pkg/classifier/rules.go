package classifier

import "regexp"

// Event kinds assigned to matched lines. The kind becomes the metric name
// segment after the prefix.
const (
	KindSuccess  = "success"
	KindReceived = "received"
	KindSent     = "sent"
	KindWriting  = "writing"
	KindBeat     = "beat"
	KindSchedule = "schedule"
	KindError    = "error"
)

// timestampLead matches the opening bracket and seconds-resolution timestamp
// every celery log line starts with. Group 1 captures the timestamp.
const timestampLead = `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`

// timestampPrefix extends timestampLead through the closing bracket of
// "[2013-02-09 15:20:43,779: INFO/MainProcess]", consuming the fractional
// part and the level/process tag without capturing them. Specific rules use
// this full form; the catch-all only needs timestampLead so truncated lines
// still count as errors.
const timestampPrefix = timestampLead + `(?:[,.]\d+)?[^\]]*\]`

// rule pairs a compiled line pattern with the event kind it classifies.
// taskGroup is the capture group index of the task name, or 0 when the rule
// captures none. Group 1 is always the timestamp.
type rule struct {
	kind      string
	pattern   *regexp.Regexp
	taskGroup int
}

// defaultRules returns the rule table in match priority order. The first
// matching rule wins, so specific patterns precede the catch-all error rule.
func defaultRules() []rule {
	return []rule{
		{
			kind:      KindSuccess,
			pattern:   regexp.MustCompile(timestampPrefix + ` Task ([\w.]+)\[[\w-]+\] succeeded in \d+(?:\.\d+)?s`),
			taskGroup: 2,
		},
		{
			// Both worker wordings: newer "Received task:" and the older
			// "Got task from broker:".
			kind:      KindReceived,
			pattern:   regexp.MustCompile(timestampPrefix + ` (?:Received task: |Got task from broker: )([\w.]+)\[[\w-]+\]`),
			taskGroup: 2,
		},
		{
			// Beat dispatch: "Scheduler: Sending due task cleanup (app.tasks.cleanup)".
			kind:      KindSent,
			pattern:   regexp.MustCompile(timestampPrefix + ` .*Sending due task \S+ \(([\w.]+)\)`),
			taskGroup: 2,
		},
		{
			kind:    KindWriting,
			pattern: regexp.MustCompile(timestampPrefix + ` Writing entries`),
		},
		{
			kind:    KindBeat,
			pattern: regexp.MustCompile(timestampPrefix + ` beat: Starting`),
		},
		{
			// "DatabaseScheduler: Schedule changed." and friends.
			kind:    KindSchedule,
			pattern: regexp.MustCompile(timestampPrefix + ` .*Schedule changed`),
		},
		{
			// Catch-all: any line with a leading timestamp that no specific
			// rule claimed, including lines cut off before the closing
			// bracket. Usually an error or traceback head.
			kind:    KindError,
			pattern: regexp.MustCompile(timestampLead),
		},
	}
}
