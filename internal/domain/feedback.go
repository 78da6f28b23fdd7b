package domain

import "time"

// FeedbackEvent records a single like/dislike a user gave a gift.
// Events are append-only; the recommendation core reads them as a lookback
// signal and never folds them into the preference profile itself.
type FeedbackEvent struct {
	UserID    string    `json:"user_id"`
	GiftName  string    `json:"gift_name"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
