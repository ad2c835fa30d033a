package estimate

import (
	"fmt"
	"sort"
	"strings"

	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/formula"
	"market_sizing/pkg/core/resolve"
)

// =============================================================================
// COMPONENT SOLVER
// Tries every strategy in a category in declared order and assembles the
// category-level Component from the winner.
// =============================================================================

// Solver produces estimation components from a fact store snapshot
type Solver struct {
	store    facts.Store
	resolver *resolve.Resolver
	friction FrictionPolicy
}

// NewSolver creates a solver over a fact store with default friction policy
func NewSolver(store facts.Store) *Solver {
	return &Solver{
		store:    store,
		resolver: resolve.NewResolver(store),
		friction: DefaultFrictionPolicy(),
	}
}

// SetFrictionPolicy swaps the market friction heuristics
func (s *Solver) SetFrictionPolicy(p FrictionPolicy) {
	s.friction = p
}

// Resolver exposes the underlying resolver (threshold tuning, alias overrides)
func (s *Solver) Resolver() *resolve.Resolver {
	return s.resolver
}

// Solve runs every strategy of the category and picks the winner.
// Selection policy: the first strategy that produces a value wins, and is
// replaced only when a later strategy also succeeds with high confidence
// while the running best does not. This deliberately favors the simpler,
// earlier-declared strategies. Overrides (fact key -> multiplier) scale
// resolved values before substitution and never touch the store; a nil map
// behaves exactly like an empty one.
func (s *Solver) Solve(cat Category, overrides map[string]float64) Component {
	strategies := Catalog(cat)
	if len(strategies) == 0 {
		return emptyComponent(cat, fmt.Sprintf("no strategies declared for category %q", cat))
	}

	var best *result
	var bestStrategy *Strategy
	var firstFailure *result

	for i := range strategies {
		st := &strategies[i]
		res := s.run(st, overrides)

		if res.value == nil {
			if firstFailure == nil {
				firstFailure = &res
			}
			continue
		}

		if best == nil {
			best, bestStrategy = &res, st
			continue
		}
		if res.confidence == facts.ConfidenceHigh && best.confidence != facts.ConfidenceHigh {
			best, bestStrategy = &res, st
		}
	}

	if best == nil {
		// All strategies failed: report the first declared strategy's gap
		first := strategies[0]
		missing := firstFailure.missingInputs
		msg := fmt.Sprintf("Missing data for %s: %s. %s",
			first.Name, strings.Join(missing, ", "), first.Methodology)
		comp := emptyComponent(cat, msg)
		return comp
	}

	meta := categoryMeta[cat]
	comp := Component{
		ID:                   meta.id,
		Category:             cat,
		Name:                 meta.name,
		Role:                 meta.role,
		MethodDescription:    meta.desc,
		DataUsed:             best.usedFacts,
		EstimatedValue:       best.value,
		Unit:                 "USD",
		Confidence:           best.confidence,
		Status:               StatusComplete,
		Color:                meta.color,
		SelectedStrategy:     bestStrategy.Name,
		CalculationBreakdown: best.details,
		MethodologyText:      bestStrategy.Methodology,
		StrategicNarrative:   bestStrategy.Description,
		RealityScore:         best.realityFactor,
	}
	for _, r := range best.resolutions {
		if r.Strategy != resolve.StrategyExact {
			comp.FuzzyBindings = append(comp.FuzzyBindings, r)
		}
	}
	return comp
}

// run executes a single strategy against the store
func (s *Solver) run(st *Strategy, overrides map[string]float64) result {
	res := result{realityFactor: 1.0}

	// Deterministic input order for breakdown text
	vars := make([]string, 0, len(st.RequiredInputs))
	for v := range st.RequiredInputs {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	inputs := make(map[string]float64)
	var levels []facts.ConfidenceLevel
	var lines []string

	for _, v := range vars {
		key := st.RequiredInputs[v]
		fact, resolution := s.resolver.Resolve(key)
		if fact == nil {
			res.missingInputs = append(res.missingInputs, key)
			continue
		}
		num, ok := fact.Value.AsNumber()
		if !ok {
			res.missingInputs = append(res.missingInputs, key)
			continue
		}
		// Overrides bind by canonical key, falling back to the stored key
		// so a fuzzily-bound fact can still be perturbed
		if m, hasOverride := overrides[key]; hasOverride {
			num *= m
		} else if m, hasOverride := overrides[resolution.MatchedKey]; hasOverride {
			num *= m
		}
		inputs[v] = num
		levels = append(levels, fact.Confidence)
		res.usedFacts = append(res.usedFacts, *fact)
		res.resolutions = append(res.resolutions, *resolution)
		lines = append(lines, fmt.Sprintf("  %s <- %s = %g", v, resolution.Describe(), num))
	}

	if len(res.missingInputs) > 0 {
		return res
	}

	value, err := formula.Evaluate(st.FormulaTemplate, inputs)
	if err != nil {
		// Formula failures are recovered locally: the strategy is simply
		// unusable, same as a missing input
		fmt.Printf("[SOLVER] strategy %s rejected: %v\n", st.ID, err)
		res.missingInputs = append(res.missingInputs, fmt.Sprintf("formula error: %v", err))
		return res
	}

	res.formulaUsed = st.FormulaTemplate
	details := fmt.Sprintf("%s:\n%s\n  %s = %g", st.Name, strings.Join(lines, "\n"), st.FormulaTemplate, value)

	if st.RealityAdjustable {
		factor, note := s.friction.Compute(s.store)
		if factor != 1.0 {
			value *= factor
			details += fmt.Sprintf("\n  %s -> x%.4f = %g", note, factor, value)
		}
		res.realityFactor = factor
		res.frictionNote = note
	}

	res.value = floatPtr(value)
	res.details = details
	res.confidence = AggregateConfidence(levels)
	return res
}
