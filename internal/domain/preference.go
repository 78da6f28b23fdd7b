package domain

// Category identifies a preference channel. The set is closed: overlap
// scoring only understands interests and vibes.
type Category string

const (
	CategoryInterest Category = "interest"
	CategoryVibe     Category = "vibe"
)

// Categories lists every valid preference category.
var Categories = []Category{CategoryInterest, CategoryVibe}

// IsValidCategory checks if a Category is valid
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryInterest, CategoryVibe:
		return true
	}
	return false
}

// PreferenceProfile holds the preferences a user supplied directly.
type PreferenceProfile struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
	Vibe      []string `json:"vibe"`
}

// InferredWeights maps category -> tag -> reinforcement count. A weight
// increments by exactly 1 per observed reinforcing feedback event and is
// never negative.
type InferredWeights map[Category]map[string]int

// EmptyInferredWeights returns an InferredWeights with all categories present.
func EmptyInferredWeights() InferredWeights {
	w := make(InferredWeights, len(Categories))
	for _, c := range Categories {
		w[c] = map[string]int{}
	}
	return w
}
