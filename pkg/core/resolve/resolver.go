// Package resolve implements fact resolution for the estimation engine.
// Strategies required inputs name canonical keys; real stores hold whatever
// keys an analyst or an LLM happened to use. The resolver bridges the gap:
// exact lookup first, then a curated alias table, then general string
// similarity as a last resort.
package resolve

import (
	"fmt"
	"strings"

	"market_sizing/pkg/core/facts"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// =============================================================================
// RESOLUTION RESULT
// =============================================================================

// Strategy names how a fact binding was obtained
type Strategy string

const (
	StrategyExact Strategy = "exact" // key found verbatim in the store
	StrategyAlias Strategy = "alias" // matched via curated alias table
	StrategyFuzzy Strategy = "fuzzy" // general similarity fallback - audit these
)

// Resolution records how a canonical key was bound to a stored fact.
// Fuzzy bindings surface in engine output so a consumer can distinguish
// "exact" from "guessed".
type Resolution struct {
	CanonicalKey string   `json:"canonical_key"`
	MatchedKey   string   `json:"matched_key"`
	Strategy     Strategy `json:"strategy"`
	Score        float64  `json:"score"` // similarity ratio, 1.0 for exact
}

// Describe renders the binding for audit trails
func (r Resolution) Describe() string {
	if r.Strategy == StrategyExact {
		return r.CanonicalKey
	}
	return fmt.Sprintf("%s ~ %s (%s, %.2f)", r.CanonicalKey, r.MatchedKey, r.Strategy, r.Score)
}

// =============================================================================
// RESOLVER
// =============================================================================

// Default acceptance thresholds for similarity matching.
// Alias candidates come from a curated table so a higher bar is safe;
// the general fallback can bind to an unintended fact and stays stricter
// about what it reports, not about what it accepts.
const (
	DefaultAliasThreshold = 0.80
	DefaultFuzzyThreshold = 0.70
)

// Resolver binds canonical fact keys to stored facts
type Resolver struct {
	store   facts.Store
	aliases map[string][]string

	// AliasThreshold and FuzzyThreshold are the minimum similarity ratios
	// for alias and general fallback matching
	AliasThreshold float64
	FuzzyThreshold float64

	metric *metrics.SorensenDice
}

// NewResolver creates a resolver over a fact store with the default
// alias table and thresholds
func NewResolver(store facts.Store) *Resolver {
	sd := metrics.NewSorensenDice()
	sd.CaseSensitive = false
	return &Resolver{
		store:          store,
		aliases:        defaultAliases(),
		AliasThreshold: DefaultAliasThreshold,
		FuzzyThreshold: DefaultFuzzyThreshold,
		metric:         sd,
	}
}

// SetAliases replaces the alias table (canonical key -> known synonyms)
func (r *Resolver) SetAliases(aliases map[string][]string) {
	r.aliases = aliases
}

// Resolve binds a canonical key to a stored fact.
// Returns nil when no binding clears a threshold; the caller treats that
// as a missing input.
func (r *Resolver) Resolve(canonicalKey string) (*facts.Fact, *Resolution) {
	// 1. Exact match
	if found := r.store.Facts("", canonicalKey); len(found) > 0 {
		f := found[0]
		return &f, &Resolution{
			CanonicalKey: canonicalKey,
			MatchedKey:   canonicalKey,
			Strategy:     StrategyExact,
			Score:        1.0,
		}
	}

	known := r.store.AllKeys()
	if len(known) == 0 {
		return nil, nil
	}

	// 2. Curated alias match
	for _, alias := range r.aliases[canonicalKey] {
		key, score := r.closest(alias, known)
		if score >= r.AliasThreshold {
			if found := r.store.Facts("", key); len(found) > 0 {
				f := found[0]
				return &f, &Resolution{
					CanonicalKey: canonicalKey,
					MatchedKey:   key,
					Strategy:     StrategyAlias,
					Score:        score,
				}
			}
		}
	}

	// 3. General similarity fallback
	key, score := r.closest(canonicalKey, known)
	if score >= r.FuzzyThreshold {
		if found := r.store.Facts("", key); len(found) > 0 {
			f := found[0]
			fmt.Printf("[RESOLVER] fuzzy match: %s -> %s (%.2f)\n", canonicalKey, key, score)
			return &f, &Resolution{
				CanonicalKey: canonicalKey,
				MatchedKey:   key,
				Strategy:     StrategyFuzzy,
				Score:        score,
			}
		}
	}

	return nil, nil
}

// closest returns the known key most similar to target and its ratio
func (r *Resolver) closest(target string, known []string) (string, float64) {
	best := ""
	bestScore := 0.0
	target = strings.ToLower(target)
	for _, k := range known {
		score := strutil.Similarity(target, strings.ToLower(k), r.metric)
		if score > bestScore {
			best = k
			bestScore = score
		}
	}
	return best, bestScore
}
