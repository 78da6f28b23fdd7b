package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// UsagePruneStore deletes usage records older than a cutoff.
type UsagePruneStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UsageRetention prunes the token usage log. The rate gate only ever reads
// one window back, so records past the retention age are dead weight.
type UsageRetention struct {
	store     UsagePruneStore
	retention time.Duration
	now       func() time.Time
}

func NewUsageRetention(store UsagePruneStore, retention time.Duration) *UsageRetention {
	return &UsageRetention{
		store:     store,
		retention: retention,
		now:       time.Now,
	}
}

// ProcessJobs deletes expired usage records.
func (r *UsageRetention) ProcessJobs(ctx context.Context) error {
	cutoff := r.now().UTC().Add(-r.retention)

	deleted, err := r.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune usage records: %w", err)
	}
	if deleted > 0 {
		log.Printf("usage retention: pruned %d records older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return nil
}
