package resolve

import (
	"testing"

	"market_sizing/pkg/core/facts"
)

func storeWith(keys ...string) *facts.MemoryStore {
	s := facts.NewMemoryStore()
	for _, k := range keys {
		s.Put(facts.NewFact(k, "demand", facts.Num(1)))
	}
	return s
}

func TestResolveExact(t *testing.T) {
	s := storeWith("average_price")
	r := NewResolver(s)

	fact, res := r.Resolve("average_price")
	if fact == nil {
		t.Fatal("expected exact match")
	}
	if res.Strategy != StrategyExact || res.Score != 1.0 {
		t.Errorf("expected exact resolution, got %+v", res)
	}
}

func TestResolveViaAlias(t *testing.T) {
	// Fact stored under an analyst spelling; strategy asks for the canonical key
	s := storeWith("target_audience")
	r := NewResolver(s)

	fact, res := r.Resolve("total_potential_customers")
	if fact == nil {
		t.Fatal("expected alias match for target_audience")
	}
	if fact.Key != "target_audience" {
		t.Errorf("expected binding to target_audience, got %s", fact.Key)
	}
	if res.Strategy != StrategyAlias {
		t.Errorf("expected alias strategy, got %s", res.Strategy)
	}
	if res.Score < r.AliasThreshold {
		t.Errorf("alias score %.2f below threshold", res.Score)
	}
}

func TestResolveFuzzyFallback(t *testing.T) {
	s := storeWith("average_prices")
	r := NewResolver(s)
	r.SetAliases(nil) // force the general fallback

	fact, res := r.Resolve("average_price")
	if fact == nil {
		t.Fatal("expected fuzzy match")
	}
	if res.Strategy != StrategyFuzzy {
		t.Errorf("expected fuzzy strategy, got %s", res.Strategy)
	}
	if res.MatchedKey != "average_prices" {
		t.Errorf("expected average_prices, got %s", res.MatchedKey)
	}
}

func TestResolveNoPlausibleMatch(t *testing.T) {
	s := storeWith("average_price", "tam_global_market")
	r := NewResolver(s)

	fact, res := r.Resolve("kangaroo_population")
	if fact != nil || res != nil {
		t.Errorf("expected nil for implausible key, got %+v / %+v", fact, res)
	}
}

func TestResolveEmptyStore(t *testing.T) {
	r := NewResolver(facts.NewMemoryStore())
	if fact, _ := r.Resolve("average_price"); fact != nil {
		t.Errorf("expected nil on empty store, got %+v", fact)
	}
}

func TestThresholdBoundary(t *testing.T) {
	s := storeWith("average_prices")
	r := NewResolver(s)
	r.SetAliases(nil)

	// First verify the candidate clears the default threshold at all
	_, res := r.Resolve("average_price")
	if res == nil {
		t.Fatal("expected a fuzzy match at the default threshold")
	}

	// A threshold just above the observed score must reject the same match
	r.FuzzyThreshold = res.Score + 0.001
	if fact, _ := r.Resolve("average_price"); fact != nil {
		t.Errorf("expected rejection above threshold %.3f", r.FuzzyThreshold)
	}

	// A threshold exactly at the score accepts (>= comparison)
	r.FuzzyThreshold = res.Score
	if fact, _ := r.Resolve("average_price"); fact == nil {
		t.Error("expected acceptance at exact threshold")
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	s := storeWith("Average_Price_USD")
	r := NewResolver(s)
	r.SetAliases(nil)

	fact, _ := r.Resolve("average_price_usd")
	if fact == nil {
		t.Fatal("expected case-insensitive fuzzy match")
	}
}
