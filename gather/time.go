package gather

import "time"

// timeLayout renders fixed-width UTC timestamps so that lexicographic
// order on the stored strings matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t as a stored record timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a stored or client-supplied timestamp. RFC3339 covers
// both the Z suffix this package writes and the +00:00 offsets wallets
// tend to send.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
