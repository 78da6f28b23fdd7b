package recommend

import (
	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
)

// Scoring weights. Tunable, but they must stay internally consistent within
// one deployment: a dislike intentionally outweighs a like, since
// re-surfacing a disliked item is the worse failure.
const (
	interestWeight  = 3
	vibeWeight      = 2
	likedBoost      = 4
	dislikedPenalty = -6

	// relevanceWeight maps the index's native relevance (0..1 similarity)
	// into the same order of magnitude as the heuristic terms. The transform
	// is monotonic: higher similarity never lowers the component.
	relevanceWeight = 15.0
)

// ScoreBreakdown is the audit trail behind a candidate's raw score.
// Computed once per candidate per request and never persisted.
type ScoreBreakdown struct {
	InterestMatches    int     `json:"interest_match"`
	VibeMatches        int     `json:"vibe_match"`
	FeedbackDelta      int     `json:"feedback"`
	RelevanceComponent float64 `json:"relevance"`
}

// ScoreCandidate computes the multi-signal raw score for one candidate.
// The result may be negative when disliked history dominates; negative
// scores are valid and survive ranking and normalization unchanged.
func ScoreCandidate(c Candidate, prefs MergedPreferences, history []domain.FeedbackEvent) (float64, ScoreBreakdown) {
	breakdown := ScoreBreakdown{
		InterestMatches:    countMatches(c.Tags.Interests, prefs.Interests),
		VibeMatches:        countMatches(c.Tags.Vibe, prefs.Vibe),
		RelevanceComponent: relevanceComponent(c.RawRelevance),
	}

	for _, event := range history {
		if event.GiftName != c.Name {
			continue
		}
		if event.Liked {
			breakdown.FeedbackDelta += likedBoost
		} else {
			breakdown.FeedbackDelta += dislikedPenalty
		}
	}

	raw := float64(breakdown.InterestMatches*interestWeight) +
		float64(breakdown.VibeMatches*vibeWeight) +
		float64(breakdown.FeedbackDelta) +
		breakdown.RelevanceComponent

	return raw, breakdown
}

// countMatches counts distinct preference tags present in the candidate's
// tag set. Set intersection, not multiset count: a tag repeated by inferred
// weighting still matches at most once.
func countMatches(tags TagSet, prefs []string) int {
	if len(tags) == 0 || len(prefs) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(prefs))
	count := 0
	for _, pref := range prefs {
		if _, dup := seen[pref]; dup {
			continue
		}
		seen[pref] = struct{}{}
		if tags.Has(pref) {
			count++
		}
	}
	return count
}

func relevanceComponent(rawRelevance float64) float64 {
	if rawRelevance <= 0 {
		return 0
	}
	if rawRelevance >= 1 {
		return relevanceWeight
	}
	return rawRelevance * relevanceWeight
}
