package localtime

import "time"

const rfc3339Format = "2006-01-02T15:04:05.000000000Z07:00"

func RFC3339(t time.Time) string {
	return t.Format(rfc3339Format)
}

func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(rfc3339Format, s)
}

// Normalize strips the monotonic clock reading and moves to UTC, so
// that times compare and render the same wherever they were produced.
func Normalize(t time.Time) time.Time {
	return t.Round(0).UTC()
}
