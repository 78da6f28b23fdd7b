package recommend

import (
	"sort"
	"strings"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
)

// MergedPreferences is the per-request fusion of explicit and inferred
// preferences. Inferred weights are encoded as multiplicity: a tag with
// weight w appears w times after the explicit entries. Downstream overlap
// scoring counts set membership only, so repetition raises a tag's chance
// of being counted without carrying a second numeric channel.
type MergedPreferences struct {
	Interests []string
	Vibe      []string
}

// MergePreferences fuses an explicit profile with inferred weights.
// Explicit tags come first, in stored order; inferred tags follow in
// alphabetical order, each repeated exactly weight times. Missing inputs
// merge as empty collections, never an error.
func MergePreferences(explicit *domain.PreferenceProfile, inferred domain.InferredWeights) MergedPreferences {
	var interests, vibe []string
	if explicit != nil {
		interests = lowercaseAll(explicit.Interests)
		vibe = lowercaseAll(explicit.Vibe)
	}

	return MergedPreferences{
		Interests: append(interests, expandWeights(inferred[domain.CategoryInterest])...),
		Vibe:      append(vibe, expandWeights(inferred[domain.CategoryVibe])...),
	}
}

// expandWeights turns {tag: weight} into a list with each tag repeated
// weight times, tags in alphabetical order so merges are deterministic.
func expandWeights(weights map[string]int) []string {
	if len(weights) == 0 {
		return nil
	}

	tags := make([]string, 0, len(weights))
	for tag := range weights {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var out []string
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		for i := 0; i < weights[tag]; i++ {
			out = append(out, normalized)
		}
	}
	return out
}

func lowercaseAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
