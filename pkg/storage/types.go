package storage

import "time"

// Entry is one row of local state.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
