package recommend

// Templated end-user reasons, in fixed priority order. Reasons carry no raw
// numbers; they exist for display, not for auditing.
const (
	ReasonInterestMatch = "Matches your interests"
	ReasonVibeMatch     = "Fits your preferred vibe"
	ReasonLikedBefore   = "You liked something similar before"
	ReasonFallback      = "Relevant to your search"
)

// BuildReasons derives the explanation tags for one score breakdown.
// At most one reason per triggered signal; the fallback appears alone.
func BuildReasons(b ScoreBreakdown) []string {
	var reasons []string

	if b.InterestMatches > 0 {
		reasons = append(reasons, ReasonInterestMatch)
	}
	if b.VibeMatches > 0 {
		reasons = append(reasons, ReasonVibeMatch)
	}
	if b.FeedbackDelta > 0 {
		reasons = append(reasons, ReasonLikedBefore)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonFallback)
	}
	return reasons
}
