package domain

import "time"

// FreshnessWindow is how long a snapshot stays usable after it was observed.
const FreshnessWindow = 24 * time.Hour

// IsFresh reports whether ts was observed less than FreshnessWindow ago.
func IsFresh(ts time.Time) bool {
	return clock.Since(ts) < FreshnessWindow
}

// IsStale is the negation of IsFresh.
func IsStale(ts time.Time) bool {
	return !IsFresh(ts)
}
