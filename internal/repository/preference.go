package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceRepository persists explicit preference profiles and inferred
// preference weights.
type PreferenceRepository struct {
	db dbtx
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{db: pool}
}

// SavePreferences creates or replaces a user's explicit preferences.
func (r *PreferenceRepository) SavePreferences(ctx context.Context, profile domain.PreferenceProfile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_preferences (user_id, interests, vibe, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id)
		 DO UPDATE SET interests = $2, vibe = $3, updated_at = $4`,
		profile.UserID,
		profile.Interests,
		profile.Vibe,
		time.Now().UTC(),
	)
	return err
}

// GetExplicitPreferences returns a user's stored profile, or nil when the
// user has never saved one. Absence is not an error.
func (r *PreferenceRepository) GetExplicitPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	profile := domain.PreferenceProfile{UserID: userID}
	err := r.db.QueryRow(ctx,
		`SELECT interests, vibe FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&profile.Interests, &profile.Vibe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetInferredPreferences returns the full weight map for a user. Users with
// no inferred rows get an empty map for every category.
func (r *PreferenceRepository) GetInferredPreferences(ctx context.Context, userID string) (domain.InferredWeights, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, value, weight FROM inferred_preferences WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := domain.EmptyInferredWeights()
	for rows.Next() {
		var category, value string
		var weight int
		if err := rows.Scan(&category, &value, &weight); err != nil {
			return nil, err
		}
		c := domain.Category(category)
		if !domain.IsValidCategory(c) {
			continue
		}
		weights[c][value] = weight
	}
	return weights, rows.Err()
}

// ReinforceInferred increments a tag's weight by exactly 1, creating the row
// at weight 1 on first observation.
func (r *PreferenceRepository) ReinforceInferred(ctx context.Context, userID string, category domain.Category, value string) error {
	if !domain.IsValidCategory(category) {
		return domain.ErrInvalidCategory
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO inferred_preferences (user_id, category, value, weight)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (user_id, category, value)
		 DO UPDATE SET weight = inferred_preferences.weight + 1`,
		userID, string(category), value,
	)
	return err
}
