package estimate

import (
	"fmt"
	"strings"

	"market_sizing/pkg/core/facts"
)

// =============================================================================
// MARKET REALITY FRICTION
// Structural signals (long sales cycles, immature markets, crowded fields)
// shave a reality-adjustable strategy's raw result. Multipliers compose
// multiplicatively and are order-agnostic.
// =============================================================================

// FrictionPolicy holds the heuristics that translate structural market
// signals into a (0, 1] multiplier. The thresholds have no empirical basis
// beyond practitioner convention, so they live in a replaceable policy
// value with YAML-overridable fields rather than hard-coded constants.
type FrictionPolicy struct {
	LongCycleMonths     float64 `yaml:"long_cycle_months"`     // sales cycle considered "long"
	VeryLongCycleMonths float64 `yaml:"verylong_cycle_months"` // sales cycle considered "very long"
	LongCycleFactor     float64 `yaml:"long_cycle_factor"`
	VeryLongCycleFactor float64 `yaml:"verylong_cycle_factor"`

	// Maturity maps a 0..1 maturity score to MaturityBase + MaturitySlope*score.
	// Defaults give an immature market a 50% haircut and a mature one none.
	MaturityBase  float64 `yaml:"maturity_base"`
	MaturitySlope float64 `yaml:"maturity_slope"`

	CrowdedCompetitorCount float64 `yaml:"crowded_competitor_count"`
	CrowdedFactor          float64 `yaml:"crowded_factor"`
}

// DefaultFrictionPolicy returns the stock heuristics
func DefaultFrictionPolicy() FrictionPolicy {
	return FrictionPolicy{
		LongCycleMonths:        6,
		VeryLongCycleMonths:    12,
		LongCycleFactor:        0.90,
		VeryLongCycleFactor:    0.75,
		MaturityBase:           0.5,
		MaturitySlope:          0.5,
		CrowdedCompetitorCount: 50,
		CrowdedFactor:          0.90,
	}
}

// Compute derives the friction multiplier from whatever structural facts are
// present in the store. Absent facts contribute nothing; the multiplier
// starts at 1.0 and only ever shrinks.
func (p FrictionPolicy) Compute(store facts.Store) (float64, string) {
	multiplier := 1.0
	var notes []string

	if found := store.Facts("", "sales_cycle_months"); len(found) > 0 {
		if months, ok := found[0].Value.AsNumber(); ok && months > p.LongCycleMonths {
			if months > p.VeryLongCycleMonths {
				multiplier *= p.VeryLongCycleFactor
				notes = append(notes, fmt.Sprintf("sales cycle %.0f months (x%.2f)", months, p.VeryLongCycleFactor))
			} else {
				multiplier *= p.LongCycleFactor
				notes = append(notes, fmt.Sprintf("sales cycle %.0f months (x%.2f)", months, p.LongCycleFactor))
			}
		}
	}

	if found := store.Facts("", "market_maturity"); len(found) > 0 {
		if maturity, ok := found[0].Value.AsNumber(); ok {
			factor := p.MaturityBase + p.MaturitySlope*maturity
			multiplier *= factor
			notes = append(notes, fmt.Sprintf("market maturity %.2f (x%.2f)", maturity, factor))
		}
	}

	if found := store.Facts("", "competitor_count"); len(found) > 0 {
		if count, ok := found[0].Value.AsNumber(); ok && count > p.CrowdedCompetitorCount {
			multiplier *= p.CrowdedFactor
			notes = append(notes, fmt.Sprintf("%.0f competitors (x%.2f)", count, p.CrowdedFactor))
		}
	}

	if len(notes) == 0 {
		return 1.0, "no structural friction signals present"
	}
	return multiplier, "market friction: " + strings.Join(notes, ", ")
}
