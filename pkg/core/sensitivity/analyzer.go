// Package sensitivity measures how elastic a market estimate is to its
// input assumptions. Each candidate variable is perturbed by +/-20% through
// solver overrides (the fact store is never mutated) and the resulting swing
// in the category estimate is classified. High elasticity caps the overall
// confidence: a number that moves 30% under a 20% input nudge is not a
// high-confidence number, whatever its inputs were labeled.
package sensitivity

import (
	"fmt"
	"math"
	"sort"

	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/facts"
)

// Perturbation multipliers applied to each variable under test
const (
	downshiftMultiplier = 0.8
	upshiftMultiplier   = 1.2
)

// Classification thresholds on the sensitivity score (mean absolute % delta).
// Boundaries are inclusive: a score of exactly 30 is CRITICAL.
const (
	criticalFloor = 30.0
	highFloor     = 15.0
	mediumFloor   = 5.0
)

// Classification labels a variable's elasticity
type Classification string

const (
	ClassCritical Classification = "CRITICAL"
	ClassHigh     Classification = "HIGH"
	ClassMedium   Classification = "MEDIUM"
	ClassLow      Classification = "LOW"
)

// Classify maps a sensitivity score onto its label
func Classify(score float64) Classification {
	switch {
	case score >= criticalFloor:
		return ClassCritical
	case score >= highFloor:
		return ClassHigh
	case score >= mediumFloor:
		return ClassMedium
	default:
		return ClassLow
	}
}

// =============================================================================
// TYPES
// =============================================================================

// Variable identifies one input assumption to perturb
type Variable struct {
	Key       string  `json:"key"` // canonical fact key
	BaseValue float64 `json:"base_value"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
}

// Test records the outcome of perturbing one variable both ways
type Test struct {
	Variable       Variable       `json:"variable"`
	LowValue       *float64       `json:"low_value"`  // estimate at x0.8
	HighValue      *float64       `json:"high_value"` // estimate at x1.2
	DeltaLowPct    float64        `json:"delta_low_pct"`
	DeltaHighPct   float64        `json:"delta_high_pct"`
	Score          float64        `json:"score"` // mean absolute delta
	Classification Classification `json:"classification"`
}

// Report is the full sensitivity analysis output
type Report struct {
	BaseValue          *float64              `json:"base_value"`
	Category           estimate.Category     `json:"category"`
	Tests              []Test                `json:"tests,omitempty"`
	MostSensitive      []Test                `json:"most_sensitive_variables,omitempty"`
	ConfidenceAdjusted facts.ConfidenceLevel `json:"confidence_adjusted"`
	Error              string                `json:"error,omitempty"`
}

// CategorySolver re-solves a category under overrides; satisfied by
// *estimate.Solver
type CategorySolver interface {
	Solve(cat estimate.Category, overrides map[string]float64) estimate.Component
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer perturbs inputs and measures output elasticity
type Analyzer struct {
	solver CategorySolver
}

// NewAnalyzer creates an analyzer over a category solver
func NewAnalyzer(solver CategorySolver) *Analyzer {
	return &Analyzer{solver: solver}
}

// Analyze perturbs each variable by +/-20% and classifies the output swing.
// A base component without a value yields an explicit error report rather
// than a failure: sensitivity is meaningless without a base.
// When vars is nil, the base component's own numeric inputs are tested.
func (a *Analyzer) Analyze(base estimate.Component, vars []Variable) Report {
	if !base.Complete() {
		return Report{
			Category:           base.Category,
			ConfidenceAdjusted: facts.ConfidenceLow,
			Error:              "base component has no estimated value; nothing to perturb",
		}
	}

	if vars == nil {
		vars = variablesFromComponent(base)
	}

	baseValue := base.Value()
	report := Report{
		BaseValue: &baseValue,
		Category:  base.Category,
	}

	maxScore := 0.0
	for _, v := range vars {
		test := Test{Variable: v}

		if low := a.solver.Solve(base.Category, map[string]float64{v.Key: downshiftMultiplier}); low.Complete() {
			val := low.Value()
			test.LowValue = &val
			test.DeltaLowPct = percentDelta(val, baseValue)
		}
		if high := a.solver.Solve(base.Category, map[string]float64{v.Key: upshiftMultiplier}); high.Complete() {
			val := high.Value()
			test.HighValue = &val
			test.DeltaHighPct = percentDelta(val, baseValue)
		}

		test.Score = (math.Abs(test.DeltaLowPct) + math.Abs(test.DeltaHighPct)) / 2
		test.Classification = Classify(test.Score)
		if test.Score > maxScore {
			maxScore = test.Score
		}
		report.Tests = append(report.Tests, test)
	}

	report.MostSensitive = topBy(report.Tests, 3)
	report.ConfidenceAdjusted = adjustConfidence(base.Confidence, maxScore)
	return report
}

// adjustConfidence couples elasticity to trust: the reported confidence can
// only be dragged down by sensitivity, never up
func adjustConfidence(base facts.ConfidenceLevel, maxScore float64) facts.ConfidenceLevel {
	switch {
	case maxScore >= criticalFloor:
		return facts.ConfidenceLow
	case maxScore >= highFloor:
		if base == facts.ConfidenceHigh {
			return facts.ConfidenceMedium
		}
		return base
	default:
		return base
	}
}

func percentDelta(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// topBy returns the n highest-scoring tests, stably ordered by score then key
func topBy(tests []Test, n int) []Test {
	sorted := make([]Test, len(tests))
	copy(sorted, tests)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Variable.Key < sorted[j].Variable.Key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// variablesFromComponent derives default test variables from the numeric
// facts the base component actually consumed
func variablesFromComponent(c estimate.Component) []Variable {
	var vars []Variable
	seen := make(map[string]bool)
	for _, f := range c.DataUsed {
		if seen[f.Key] {
			continue
		}
		if n, ok := f.Value.AsNumber(); ok {
			seen[f.Key] = true
			vars = append(vars, Variable{
				Key:       f.Key,
				BaseValue: n,
				Name:      fmt.Sprintf("%s (%s)", f.Key, f.Source),
				Unit:      f.Unit,
			})
		}
	}
	return vars
}
