package classifier

import (
	"fmt"
	"strconv"
	"time"
)

// timestampLayout parses the captured seconds-resolution timestamp text.
const timestampLayout = "2006-01-02 15:04:05"

// epochSeconds parses a captured timestamp in the given location and renders
// it as decimal seconds since the Unix epoch.
func epochSeconds(ts string, loc *time.Location) (string, error) {
	t, err := time.ParseInLocation(timestampLayout, ts, loc)
	if err != nil {
		return "", fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return strconv.FormatInt(t.Unix(), 10), nil
}
