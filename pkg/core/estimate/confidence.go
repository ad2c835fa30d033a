package estimate

import (
	"market_sizing/pkg/core/facts"
)

// =============================================================================
// CONFIDENCE AGGREGATION
// =============================================================================

// Classification thresholds for the blended confidence score (1-3 scale)
const (
	highConfidenceFloor   = 2.5
	mediumConfidenceFloor = 1.5
)

// AggregateConfidence blends the per-input confidence labels of the facts a
// strategy consumed into one output label. Only resolved inputs participate;
// a missing input short-circuits the strategy before this runs, so it is
// never scored as zero here.
func AggregateConfidence(levels []facts.ConfidenceLevel) facts.ConfidenceLevel {
	if len(levels) == 0 {
		return facts.ConfidenceLow
	}

	total := 0.0
	for _, l := range levels {
		total += l.Score()
	}
	mean := total / float64(len(levels))

	switch {
	case mean >= highConfidenceFloor:
		return facts.ConfidenceHigh
	case mean >= mediumConfidenceFloor:
		return facts.ConfidenceMedium
	default:
		return facts.ConfidenceLow
	}
}
