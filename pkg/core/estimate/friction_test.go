package estimate

import (
	"fmt"
	"math"
	"testing"

	"market_sizing/pkg/core/facts"
)

func frictionStore() *facts.MemoryStore {
	return facts.NewMemoryStore()
}

func TestFrictionNoSignals(t *testing.T) {
	p := DefaultFrictionPolicy()
	mult, note := p.Compute(frictionStore())
	if mult != 1.0 {
		t.Errorf("expected 1.0 with no signals, got %g", mult)
	}
	if note == "" {
		t.Error("expected an explanation even when no signals apply")
	}
}

func TestFrictionSalesCycle(t *testing.T) {
	p := DefaultFrictionPolicy()

	cases := []struct {
		months float64
		want   float64
	}{
		{3, 1.0},
		{6, 1.0},  // boundary: > 6, not >=
		{9, 0.90},
		{12, 0.90}, // boundary: > 12, not >=
		{13, 0.75},
	}
	for _, c := range cases {
		s := frictionStore()
		s.Put(facts.NewFact("sales_cycle_months", "market_reality", facts.Num(c.months)))
		mult, _ := p.Compute(s)
		if mult != c.want {
			t.Errorf("cycle %g months: expected %g, got %g", c.months, c.want, mult)
		}
	}
}

func TestFrictionMaturity(t *testing.T) {
	p := DefaultFrictionPolicy()

	cases := []struct {
		maturity float64
		want     float64
	}{
		{0.0, 0.50}, // immature market halves the estimate
		{0.5, 0.75},
		{1.0, 1.00}, // fully mature market takes no haircut
	}
	for _, c := range cases {
		s := frictionStore()
		s.Put(facts.NewFact("market_maturity", "market_reality", facts.Num(c.maturity)))
		mult, _ := p.Compute(s)
		if math.Abs(mult-c.want) > 1e-9 {
			t.Errorf("maturity %g: expected %g, got %g", c.maturity, c.want, mult)
		}
	}
}

func TestFrictionCompetitorDensity(t *testing.T) {
	p := DefaultFrictionPolicy()

	s := frictionStore()
	s.Put(facts.NewFact("competitor_count", "supply", facts.Num(50)))
	if mult, _ := p.Compute(s); mult != 1.0 {
		t.Errorf("50 competitors is not crowded (> threshold), got %g", mult)
	}

	s = frictionStore()
	s.Put(facts.NewFact("competitor_count", "supply", facts.Num(51)))
	if mult, _ := p.Compute(s); mult != 0.90 {
		t.Errorf("51 competitors should apply x0.90, got %g", mult)
	}
}

func TestFrictionCompetitorList(t *testing.T) {
	// A roster of competitors counts by length
	p := DefaultFrictionPolicy()
	s := frictionStore()

	names := make([]string, 60)
	for i := range names {
		names[i] = fmt.Sprintf("competitor_%d", i)
	}
	s.Put(facts.NewFact("competitor_count", "supply", facts.List(names...)))

	if mult, _ := p.Compute(s); mult != 0.90 {
		t.Errorf("60-item roster should apply x0.90, got %g", mult)
	}
}

func TestFrictionComposesMultiplicatively(t *testing.T) {
	p := DefaultFrictionPolicy()
	s := frictionStore()
	s.Put(facts.NewFact("sales_cycle_months", "market_reality", facts.Num(9)))
	s.Put(facts.NewFact("competitor_count", "supply", facts.Num(60)))

	mult, note := p.Compute(s)
	if math.Abs(mult-0.81) > 1e-9 {
		t.Errorf("expected 0.9*0.9 = 0.81, got %g", mult)
	}
	if note == "" {
		t.Error("expected a composed explanation")
	}
}

func TestFrictionCustomPolicy(t *testing.T) {
	p := DefaultFrictionPolicy()
	p.CrowdedCompetitorCount = 10
	p.CrowdedFactor = 0.5

	s := frictionStore()
	s.Put(facts.NewFact("competitor_count", "supply", facts.Num(11)))

	if mult, _ := p.Compute(s); mult != 0.5 {
		t.Errorf("custom policy should apply, got %g", mult)
	}
}
