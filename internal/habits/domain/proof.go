package domain

import "time"

// TaskProof is local evidence attached to a completion for one day.
type TaskProof struct {
	URL       string
	Timestamp time.Time
	FileName  string
}
