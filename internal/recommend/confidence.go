package recommend

import "math"

// Confidence bounds. Displayed certainty is kept away from 0% and 100% so a
// relative rank signal is never mistaken for an absolute probability.
const (
	confidenceFloor   = 0.55
	confidenceCeiling = 0.95
	confidenceNeutral = 0.60
)

// NormalizeConfidence rescales a batch of raw scores into bounded display
// confidences via min-max rescaling, rounded to two decimals. An all-equal
// batch maps to the neutral value. The measure is batch-scoped: the same
// raw score can map to different confidences in different requests.
func NormalizeConfidence(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	if min == max {
		for i := range out {
			out[i] = confidenceNeutral
		}
		return out
	}

	span := max - min
	for i, s := range scores {
		c := confidenceFloor + (s-min)/span*(confidenceCeiling-confidenceFloor)
		out[i] = math.Round(c*100) / 100
	}
	return out
}
