package repository

import (
	"context"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository is the durable backing for the rate gate: an append-only
// log of per-client token consumption.
type UsageRepository struct {
	db dbtx
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: pool}
}

// SumInWindow returns the units a client consumed at or after since, and the
// timestamp of the oldest qualifying record (zero when none exist).
func (r *UsageRepository) SumInWindow(ctx context.Context, clientID string, since time.Time) (int64, time.Time, error) {
	var sum int64
	var oldest *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(tokens_used), 0), MIN(recorded_at)
		 FROM token_usage
		 WHERE client_id = $1 AND recorded_at >= $2`,
		clientID, since,
	).Scan(&sum, &oldest)
	if err != nil {
		return 0, time.Time{}, err
	}
	if oldest == nil {
		return sum, time.Time{}, nil
	}
	return sum, oldest.UTC(), nil
}

// Append writes one immutable usage record.
func (r *UsageRepository) Append(ctx context.Context, record domain.ClientUsageRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO token_usage (client_id, tokens_used, resource, operation, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ClientID,
		record.UnitsConsumed,
		record.Resource,
		record.Operation,
		record.RecordedAt,
	)
	return err
}

// DeleteOlderThan prunes usage records past their retention age and returns
// how many were removed.
func (r *UsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM token_usage WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
