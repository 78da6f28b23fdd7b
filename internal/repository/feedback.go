package repository

import (
	"context"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FeedbackRepository persists the append-only like/dislike log.
type FeedbackRepository struct {
	db dbtx
}

func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: pool}
}

// Append records one feedback event.
func (r *FeedbackRepository) Append(ctx context.Context, event domain.FeedbackEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO feedback (user_id, gift_name, liked, created_at)
		 VALUES ($1, $2, $3, $4)`,
		event.UserID, event.GiftName, event.Liked, createdAt,
	)
	return err
}

// GetFeedback returns every feedback event a user has recorded, oldest first.
func (r *FeedbackRepository) GetFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, gift_name, liked, created_at
		 FROM feedback WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.FeedbackEvent
	for rows.Next() {
		var e domain.FeedbackEvent
		if err := rows.Scan(&e.UserID, &e.GiftName, &e.Liked, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
