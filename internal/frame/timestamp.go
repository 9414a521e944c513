package frame

import "time"

// TimestampLayout is the ISO-8601 layout used in persisted documents.
// Fractional seconds are dropped when zero and no zone is written.
const TimestampLayout = "2006-01-02T15:04:05.999999"

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp. Zoned RFC 3339 values are
// accepted as well as the zone-less layout written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
