package recommend

import (
	"testing"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScoreCandidate(t *testing.T) {
	t.Run("interest overlap is set intersection not multiset count", func(t *testing.T) {
		candidate := Candidate{
			Name: "Pour Over Kit",
			Tags: CandidateTags{Interests: NewTagSet("coffee", "tea")},
		}
		prefs := MergedPreferences{Interests: []string{"coffee", "tea", "tea"}}

		raw, breakdown := ScoreCandidate(candidate, prefs, nil)

		assert.Equal(t, 2, breakdown.InterestMatches)
		assert.Equal(t, float64(6), raw)
	})

	t.Run("vibe matches contribute double weight", func(t *testing.T) {
		candidate := Candidate{
			Name: "Weighted Blanket",
			Tags: CandidateTags{Vibe: NewTagSet("cozy", "practical")},
		}
		prefs := MergedPreferences{Vibe: []string{"cozy"}}

		raw, breakdown := ScoreCandidate(candidate, prefs, nil)

		assert.Equal(t, 1, breakdown.VibeMatches)
		assert.Equal(t, float64(2), raw)
	})

	t.Run("one dislike outweighs one like", func(t *testing.T) {
		candidate := Candidate{Name: "Mug"}
		history := []domain.FeedbackEvent{
			{GiftName: "Mug", Liked: true},
			{GiftName: "Mug", Liked: false},
		}

		raw, breakdown := ScoreCandidate(candidate, MergedPreferences{}, history)

		assert.Equal(t, -2, breakdown.FeedbackDelta)
		assert.Equal(t, float64(-2), raw)
	})

	t.Run("dislike applies only to the matching candidate", func(t *testing.T) {
		history := []domain.FeedbackEvent{{GiftName: "Mug", Liked: false}}

		_, mugBreakdown := ScoreCandidate(Candidate{Name: "Mug"}, MergedPreferences{}, history)
		_, otherBreakdown := ScoreCandidate(Candidate{Name: "Teapot"}, MergedPreferences{}, history)

		assert.Equal(t, -6, mugBreakdown.FeedbackDelta)
		assert.Equal(t, 0, otherBreakdown.FeedbackDelta)
	})

	t.Run("negative raw score survives unclamped", func(t *testing.T) {
		history := []domain.FeedbackEvent{
			{GiftName: "Mug", Liked: false},
			{GiftName: "Mug", Liked: false},
		}

		raw, _ := ScoreCandidate(Candidate{Name: "Mug"}, MergedPreferences{}, history)

		assert.Equal(t, float64(-12), raw)
	})

	t.Run("relevance component is monotonic in similarity", func(t *testing.T) {
		low, _ := ScoreCandidate(Candidate{RawRelevance: 0.2}, MergedPreferences{}, nil)
		high, _ := ScoreCandidate(Candidate{RawRelevance: 0.8}, MergedPreferences{}, nil)

		assert.Less(t, low, high)
	})

	t.Run("relevance component stays within its scale", func(t *testing.T) {
		zero, breakdown := ScoreCandidate(Candidate{RawRelevance: -0.5}, MergedPreferences{}, nil)
		assert.Equal(t, float64(0), zero)
		assert.Equal(t, float64(0), breakdown.RelevanceComponent)

		capped, breakdown := ScoreCandidate(Candidate{RawRelevance: 2.0}, MergedPreferences{}, nil)
		assert.Equal(t, relevanceWeight, capped)
		assert.Equal(t, relevanceWeight, breakdown.RelevanceComponent)
	})

	t.Run("signals sum into the raw score", func(t *testing.T) {
		candidate := Candidate{
			Name: "Espresso Machine",
			Tags: CandidateTags{
				Interests: NewTagSet("coffee"),
				Vibe:      NewTagSet("luxury"),
			},
			RawRelevance: 1.0,
		}
		prefs := MergedPreferences{
			Interests: []string{"coffee"},
			Vibe:      []string{"luxury"},
		}
		history := []domain.FeedbackEvent{{GiftName: "Espresso Machine", Liked: true}}

		raw, breakdown := ScoreCandidate(candidate, prefs, history)

		// 1*3 + 1*2 + 4 + 15
		assert.Equal(t, float64(24), raw)
		assert.Equal(t, 1, breakdown.InterestMatches)
		assert.Equal(t, 1, breakdown.VibeMatches)
		assert.Equal(t, 4, breakdown.FeedbackDelta)
	})
}
