package storage

import "time"

const (
	keyUserID       = "userId"
	keySavedCourses = "savedCourses"
)

// parseTimestamp reads SQLite CURRENT_TIMESTAMP values.
// Try "2006-01-02 15:04:05" then RFC3339
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
