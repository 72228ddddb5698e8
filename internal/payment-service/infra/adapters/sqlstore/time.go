package sqlstore

import (
	"fmt"
	"time"
)

// timeLayout is fixed width so that TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlstore: parse time %q: %w", s, err)
	}
	return t, nil
}

// normalizeTime drops the monotonic reading and location so a saved entity
// compares equal to the one read back.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Round(0)
}
