// celerymetrics - celery log metric extraction
//
// celerymetrics reads celery worker and beat log lines and emits counter
// samples (metric name, epoch seconds, count, attributes) for a metrics
// backend.
package main

import (
	"os"

	"github.com/dogtail/celerymetrics/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
