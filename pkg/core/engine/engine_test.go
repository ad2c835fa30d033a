package engine

import (
	"context"
	"testing"

	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/facts"
)

// --- Mocks ---

type MockAuditSink struct {
	SaveFunc func(ctx context.Context, c estimate.Component) error
	saved    []estimate.Component
}

func (m *MockAuditSink) SaveComponent(ctx context.Context, c estimate.Component) error {
	m.saved = append(m.saved, c)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	return nil
}

// --- Fixtures ---

func fullStore(t *testing.T) *facts.MemoryStore {
	t.Helper()
	s := facts.NewMemoryStore()
	add := func(key, category string, v facts.FactValue, conf facts.ConfidenceLevel) {
		f := facts.NewFact(key, category, v)
		f.Confidence = conf
		if err := s.Put(f); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}
	add("tam_global_market", "macro", facts.Num(10_000_000_000), facts.ConfidenceHigh)
	add("sam_percent", "macro", facts.Num(0.20), facts.ConfidenceHigh)
	add("som_share", "macro", facts.Num(0.05), facts.ConfidenceHigh)
	add("total_potential_customers", "demand", facts.Num(5000), facts.ConfidenceHigh)
	add("average_price", "demand", facts.Num(20000), facts.ConfidenceMedium)
	add("competitor_count", "supply", facts.Num(40), facts.ConfidenceMedium)
	add("competitor_avg_revenue", "supply", facts.Num(2_500_000), facts.ConfidenceLow)
	return s
}

// --- Tests ---

func TestAllEstimationsShape(t *testing.T) {
	e := NewEngine(fullStore(t))

	all := e.AllEstimations(nil)
	if len(all) != 4 {
		t.Fatalf("expected [macro, demand, supply, triangulation], got %d components", len(all))
	}
	want := []estimate.Category{
		estimate.CategoryMacro,
		estimate.CategoryDemand,
		estimate.CategorySupply,
		estimate.CategoryTriangulation,
	}
	for i, cat := range want {
		if all[i].Category != cat {
			t.Errorf("position %d: expected %s, got %s", i, cat, all[i].Category)
		}
	}
	if all[3].ContributingMethodCount != 3 {
		t.Errorf("expected 3 contributing methods, got %d", all[3].ContributingMethodCount)
	}
}

func TestBestMethodPrefersTriangulation(t *testing.T) {
	e := NewEngine(fullStore(t))

	best := e.BestMethod(nil)
	if best.Category != estimate.CategoryTriangulation {
		t.Errorf("with 3 valid methods triangulation wins, got %s", best.Category)
	}
}

func TestBestMethodFallsBackToDemand(t *testing.T) {
	s := facts.NewMemoryStore()
	customers := facts.NewFact("total_potential_customers", "demand", facts.Num(1000))
	customers.Confidence = facts.ConfidenceHigh
	s.Put(customers)
	price := facts.NewFact("average_price", "demand", facts.Num(50))
	price.Confidence = facts.ConfidenceHigh
	s.Put(price)

	best := NewEngine(s).BestMethod(nil)
	if best.Category != estimate.CategoryDemand {
		t.Errorf("single-method triangulation must lose to demand, got %s", best.Category)
	}
}

func TestEngineDeterminism(t *testing.T) {
	e := NewEngine(fullStore(t))

	first := e.BestMethod(nil)
	for i := 0; i < 5; i++ {
		again := e.BestMethod(nil)
		if again.Value() != first.Value() || again.Confidence != first.Confidence {
			t.Fatal("engine calls over a fixed store must be deterministic")
		}
	}
}

func TestSensitivityThroughEngine(t *testing.T) {
	e := NewEngine(fullStore(t))
	demand := e.SolveCategory(estimate.CategoryDemand, nil)

	report := e.SensitivityAnalysis(demand, nil)
	if report.Error != "" {
		t.Fatalf("unexpected sensitivity error: %s", report.Error)
	}
	if report.BaseValue == nil || *report.BaseValue != demand.Value() {
		t.Error("report base must match the solved component")
	}
	if len(report.Tests) == 0 {
		t.Fatal("expected derived variables from the demand component")
	}
	// Demand is a pure product of its two inputs: each test swings +/-20%
	for _, test := range report.Tests {
		if test.Classification != "HIGH" {
			t.Errorf("%s: expected HIGH elasticity for a multiplicative input, got %s",
				test.Variable.Key, test.Classification)
		}
	}
}

func TestConsolidatedFacts(t *testing.T) {
	e := NewEngine(fullStore(t))

	rows := e.ConsolidatedFacts()
	if len(rows) != 7 {
		t.Fatalf("expected a row per stored fact, got %d", len(rows))
	}

	byKey := make(map[string]FactRow)
	for _, r := range rows {
		byKey[r.Fact.Key] = r
	}

	if len(byKey["average_price"].UsedBy) == 0 {
		t.Error("average_price should be attributed to the demand component")
	}
	if len(byKey["som_share"].UsedBy) == 0 {
		t.Error("som_share should be attributed to the macro component")
	}
}

func TestAuditSink(t *testing.T) {
	e := NewEngine(fullStore(t))
	sink := &MockAuditSink{}
	e.SetAuditSink(sink)

	best := e.BestMethod(nil)
	if err := e.Audit(context.Background(), best); err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if len(sink.saved) != 1 {
		t.Fatalf("expected 1 audited component, got %d", len(sink.saved))
	}

	// No sink configured is a no-op, not an error
	bare := NewEngine(fullStore(t))
	if err := bare.Audit(context.Background(), best); err != nil {
		t.Errorf("nil sink should be a no-op: %v", err)
	}
}
