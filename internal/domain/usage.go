package domain

import "time"

// ClientUsageRecord is one append-only entry in the usage log. Records are
// immutable once written and only leave the store through retention pruning.
type ClientUsageRecord struct {
	ClientID      string    `json:"client_id"`
	UnitsConsumed int64     `json:"units_consumed"`
	Resource      string    `json:"resource"`
	Operation     string    `json:"operation"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// DefaultUsageRetention is how long usage records are kept before the
// background worker prunes them.
const DefaultUsageRetention = 7 * 24 * time.Hour
