package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

// PreferenceRepositoryInterface defines the repository interface for
// preference persistence
type PreferenceRepositoryInterface interface {
	SavePreferences(ctx context.Context, profile domain.PreferenceProfile) error
	GetExplicitPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error)
	GetInferredPreferences(ctx context.Context, userID string) (domain.InferredWeights, error)
	ReinforceInferred(ctx context.Context, userID string, category domain.Category, value string) error
}

// FeedbackRepositoryInterface defines the repository interface for feedback
// persistence
type FeedbackRepositoryInterface interface {
	Append(ctx context.Context, event domain.FeedbackEvent) error
}

// ProductLookup resolves a gift by its display name.
type ProductLookup interface {
	GetByName(ctx context.Context, name string) (*domain.GiftProduct, error)
}

// PreferenceService handles explicit preference profiles and feedback,
// including the learning step that folds liked gifts back into inferred
// preference weights.
type PreferenceService struct {
	preferences PreferenceRepositoryInterface
	feedback    FeedbackRepositoryInterface
	catalog     ProductLookup
}

func NewPreferenceService(preferences PreferenceRepositoryInterface, feedback FeedbackRepositoryInterface, catalog ProductLookup) *PreferenceService {
	return &PreferenceService{
		preferences: preferences,
		feedback:    feedback,
		catalog:     catalog,
	}
}

// SavePreferences replaces a user's explicit preference profile. Tags are
// lowercased and blank entries dropped before storage.
func (s *PreferenceService) SavePreferences(ctx context.Context, profile domain.PreferenceProfile) error {
	ctx, span := telemetry.StartSpan(ctx, "PreferenceService.SavePreferences", telemetry.SpanAttributes{
		UserID:    profile.UserID,
		Operation: "save_preferences",
	})
	defer span.End()

	if profile.UserID == "" {
		return domain.ErrMissingRequiredField
	}

	profile.Interests = normalizeTags(profile.Interests)
	profile.Vibe = normalizeTags(profile.Vibe)

	return s.preferences.SavePreferences(ctx, profile)
}

// GetPreferences returns a user's explicit profile, or nil when none exists.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	if userID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.preferences.GetExplicitPreferences(ctx, userID)
}

// RecordFeedback appends one like/dislike event. A liked gift additionally
// reinforces the gift's interest and vibe tags in the user's inferred
// weights, each by exactly 1 per event; dislikes only land in the feedback
// log, where scoring penalizes them directly.
func (s *PreferenceService) RecordFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "PreferenceService.RecordFeedback", telemetry.SpanAttributes{
		UserID:    event.UserID,
		Operation: "record_feedback",
	})
	defer span.End()

	if event.UserID == "" || event.GiftName == "" {
		return domain.ErrMissingRequiredField
	}

	if err := s.feedback.Append(ctx, event); err != nil {
		return err
	}

	if event.Liked {
		s.reinforceFromGift(ctx, event.UserID, event.GiftName)
	}

	return nil
}

// reinforceFromGift is best-effort: a missing gift or failed increment never
// fails the feedback write that already happened.
func (s *PreferenceService) reinforceFromGift(ctx context.Context, userID, giftName string) {
	gift, err := s.catalog.GetByName(ctx, giftName)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("preference: gift lookup failed for %q: %v", giftName, err)
		}
		return
	}

	for _, tag := range normalizeTags(gift.Interests) {
		if err := s.preferences.ReinforceInferred(ctx, userID, domain.CategoryInterest, tag); err != nil {
			log.Printf("preference: failed to reinforce interest %q for %s: %v", tag, userID, err)
		}
	}
	for _, tag := range normalizeTags(gift.Vibe) {
		if err := s.preferences.ReinforceInferred(ctx, userID, domain.CategoryVibe, tag); err != nil {
			log.Printf("preference: failed to reinforce vibe %q for %s: %v", tag, userID, err)
		}
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
