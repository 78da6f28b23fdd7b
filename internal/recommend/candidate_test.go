package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagField(t *testing.T) {
	t.Run("string list maps element-wise", func(t *testing.T) {
		set := NormalizeTagField([]string{"Coffee", " Tea "})

		assert.Equal(t, []string{"coffee", "tea"}, set.Values())
	})

	t.Run("interface list keeps only strings", func(t *testing.T) {
		set := NormalizeTagField([]any{"Coffee", 42, "tea", nil})

		assert.Equal(t, []string{"coffee", "tea"}, set.Values())
	})

	t.Run("delimited string splits on commas", func(t *testing.T) {
		set := NormalizeTagField("coffee, Tea ,,gaming")

		assert.Equal(t, []string{"coffee", "gaming", "tea"}, set.Values())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		set := NormalizeTagField("coffee,COFFEE, coffee")

		assert.Equal(t, []string{"coffee"}, set.Values())
	})

	t.Run("unusable shapes normalize to empty sets", func(t *testing.T) {
		assert.Empty(t, NormalizeTagField(nil))
		assert.Empty(t, NormalizeTagField(42))
		assert.Empty(t, NormalizeTagField(map[string]any{"a": "b"}))
	})
}

func TestNormalizeCandidate(t *testing.T) {
	t.Run("mixed tag shapes coerce to canonical sets", func(t *testing.T) {
		raw := RawItem{
			ID:    "gift_0001",
			Name:  "Pour Over Kit",
			Price: 42.50,
			Tags: map[string]any{
				"interests":  []any{"Coffee", "tea"},
				"vibe":       "cozy, practical",
				"categories": 7,
			},
			InStock:      true,
			RawRelevance: 0.8,
		}

		c := NormalizeCandidate(raw)

		assert.Equal(t, "gift_0001", c.ID)
		assert.Equal(t, []string{"coffee", "tea"}, c.Tags.Interests.Values())
		assert.Equal(t, []string{"cozy", "practical"}, c.Tags.Vibe.Values())
		assert.Empty(t, c.Tags.Categories)
		assert.Empty(t, c.Tags.Occasions)
		assert.Equal(t, 0.8, c.RawRelevance)
	})

	t.Run("garbage tags still produce a scoreable candidate", func(t *testing.T) {
		raw := RawItem{Name: "Mystery Box", Tags: map[string]any{"interests": 99}}

		c := NormalizeCandidate(raw)
		rawScore, breakdown := ScoreCandidate(c, MergedPreferences{Interests: []string{"coffee"}}, nil)

		assert.Equal(t, float64(0), rawScore)
		assert.Equal(t, 0, breakdown.InterestMatches)
	})

	t.Run("absent relevance defaults to zero contribution", func(t *testing.T) {
		c := NormalizeCandidate(RawItem{Name: "Plain"})

		assert.Equal(t, float64(0), c.RawRelevance)
	})
}
