package utils

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	displayDate     = "Jan 2, 2006"
	displayDateTime = "Jan 2, 2006, 3:04 PM"
)

// timestampLayouts covers what the backend emits: Python isoformat with and
// without offsets, pandas timestamps, Alpha Vantage news stamps and RSS dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"20060102T150405",
	"20060102T1504",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses s as a backend timestamp. Timestamps without an
// offset are read in the viewer's local zone. The second result reports
// whether s carried a time of day, the third whether it parsed at all.
func ParseTimestamp(s string) (time.Time, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true, true
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

// FormatDate renders a backend timestamp in the viewer's locale. Strings
// that do not parse are returned unchanged.
func FormatDate(s string) string {
	t, hasClock, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	if !hasClock {
		return t.Format(displayDate)
	}
	return FormatDateTime(t)
}

// FormatDateTime renders t in the local zone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(displayDateTime)
}

// FormatRelativeDate renders s relative to now ("3 hours ago"), falling back
// to the original string when it does not parse.
func FormatRelativeDate(s string, now time.Time) string {
	t, _, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
