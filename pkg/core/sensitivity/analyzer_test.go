package sensitivity

import (
	"math"
	"testing"

	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/facts"
)

// --- Mocks ---

type MockSolver struct {
	SolveFunc func(cat estimate.Category, overrides map[string]float64) estimate.Component
}

func (m *MockSolver) Solve(cat estimate.Category, overrides map[string]float64) estimate.Component {
	return m.SolveFunc(cat, overrides)
}

func component(value float64, conf facts.ConfidenceLevel) estimate.Component {
	return estimate.Component{
		Category:       estimate.CategoryDemand,
		EstimatedValue: &value,
		Status:         estimate.StatusComplete,
		Confidence:     conf,
	}
}

// linearSolver scales a base value linearly with the override on one key
func linearSolver(base float64, key string) *MockSolver {
	return &MockSolver{
		SolveFunc: func(cat estimate.Category, overrides map[string]float64) estimate.Component {
			m, ok := overrides[key]
			if !ok {
				m = 1.0
			}
			return component(base*m, facts.ConfidenceHigh)
		},
	}
}

// --- Tests ---

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Classification
	}{
		{45, ClassCritical},
		{30, ClassCritical}, // inclusive boundary
		{29.999, ClassHigh},
		{15, ClassHigh},
		{14.999, ClassMedium},
		{5, ClassMedium},
		{4.999, ClassLow},
		{0, ClassLow},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Errorf("Classify(%g) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestAnalyzeLinearVariable(t *testing.T) {
	base := component(100, facts.ConfidenceHigh)
	a := NewAnalyzer(linearSolver(100, "average_price"))

	report := a.Analyze(base, []Variable{{Key: "average_price", BaseValue: 12000, Name: "Average Price", Unit: "USD"}})

	if report.BaseValue == nil || *report.BaseValue != 100 {
		t.Fatalf("expected base value 100, got %+v", report.BaseValue)
	}
	if len(report.Tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(report.Tests))
	}

	test := report.Tests[0]
	// x0.8 -> 80 (-20%), x1.2 -> 120 (+20%); score = 20 -> HIGH
	if math.Abs(test.DeltaLowPct+20) > 1e-9 || math.Abs(test.DeltaHighPct-20) > 1e-9 {
		t.Errorf("expected -20/+20 deltas, got %g/%g", test.DeltaLowPct, test.DeltaHighPct)
	}
	if math.Abs(test.Score-20) > 1e-9 {
		t.Errorf("expected score 20, got %g", test.Score)
	}
	if test.Classification != ClassHigh {
		t.Errorf("expected HIGH, got %s", test.Classification)
	}

	// Max score in (15, 30] caps high confidence at medium
	if report.ConfidenceAdjusted != facts.ConfidenceMedium {
		t.Errorf("expected capped medium, got %s", report.ConfidenceAdjusted)
	}
}

func TestAnalyzeInsensitiveVariable(t *testing.T) {
	base := component(100, facts.ConfidenceHigh)
	solver := &MockSolver{
		SolveFunc: func(cat estimate.Category, overrides map[string]float64) estimate.Component {
			return component(100, facts.ConfidenceHigh) // output ignores the input
		},
	}

	report := NewAnalyzer(solver).Analyze(base, []Variable{{Key: "segment_count", BaseValue: 10}})

	if report.Tests[0].Score != 0 || report.Tests[0].Classification != ClassLow {
		t.Errorf("expected LOW with zero swing, got %+v", report.Tests[0])
	}
	if report.ConfidenceAdjusted != facts.ConfidenceHigh {
		t.Errorf("insensitive estimate keeps its confidence, got %s", report.ConfidenceAdjusted)
	}
}

func TestAnalyzeCriticalDowngradesConfidence(t *testing.T) {
	base := component(100, facts.ConfidenceHigh)
	// Amplifying solver: a 20% input nudge moves the output 50%
	solver := &MockSolver{
		SolveFunc: func(cat estimate.Category, overrides map[string]float64) estimate.Component {
			if m, ok := overrides["tam_global_market"]; ok {
				return component(100*(1+(m-1)*2.5), facts.ConfidenceHigh)
			}
			return component(100, facts.ConfidenceHigh)
		},
	}

	report := NewAnalyzer(solver).Analyze(base, []Variable{{Key: "tam_global_market", BaseValue: 1e10}})

	if report.Tests[0].Classification != ClassCritical {
		t.Errorf("expected CRITICAL, got %s", report.Tests[0].Classification)
	}
	// An estimate that swings wildly cannot stay high-confidence
	if report.ConfidenceAdjusted != facts.ConfidenceLow {
		t.Errorf("expected forced low, got %s", report.ConfidenceAdjusted)
	}
}

func TestAnalyzeExactCriticalBoundary(t *testing.T) {
	base := component(100, facts.ConfidenceHigh)
	// +/-20% input yields exactly +/-30% output
	solver := &MockSolver{
		SolveFunc: func(cat estimate.Category, overrides map[string]float64) estimate.Component {
			m := overrides["average_price"]
			return component(100*(1+(m-1)*1.5), facts.ConfidenceHigh)
		},
	}

	report := NewAnalyzer(solver).Analyze(base, []Variable{{Key: "average_price", BaseValue: 100}})

	if math.Abs(report.Tests[0].Score-30) > 1e-9 {
		t.Fatalf("expected score 30, got %g", report.Tests[0].Score)
	}
	if report.Tests[0].Classification != ClassCritical {
		t.Errorf("score of exactly 30 must be CRITICAL, got %s", report.Tests[0].Classification)
	}
	if report.ConfidenceAdjusted != facts.ConfidenceLow {
		t.Errorf("expected low at the inclusive boundary, got %s", report.ConfidenceAdjusted)
	}
}

func TestAnalyzeRanksMostSensitive(t *testing.T) {
	base := component(100, facts.ConfidenceLow)
	// Each key has a different elasticity
	gain := map[string]float64{"a": 0.5, "b": 2.0, "c": 1.0, "d": 0.1}
	solver := &MockSolver{
		SolveFunc: func(cat estimate.Category, overrides map[string]float64) estimate.Component {
			for k, m := range overrides {
				return component(100*(1+(m-1)*gain[k]), facts.ConfidenceLow)
			}
			return component(100, facts.ConfidenceLow)
		},
	}

	report := NewAnalyzer(solver).Analyze(base, []Variable{
		{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"},
	})

	if len(report.MostSensitive) != 3 {
		t.Fatalf("expected top 3, got %d", len(report.MostSensitive))
	}
	order := []string{"b", "c", "a"}
	for i, want := range order {
		if report.MostSensitive[i].Variable.Key != want {
			t.Errorf("rank %d: expected %s, got %s", i, want, report.MostSensitive[i].Variable.Key)
		}
	}
}

func TestAnalyzeWithoutBaseValue(t *testing.T) {
	base := estimate.Component{
		Category:   estimate.CategoryMacro,
		Status:     estimate.StatusEmpty,
		Confidence: facts.ConfidenceLow,
	}

	report := NewAnalyzer(&MockSolver{SolveFunc: func(estimate.Category, map[string]float64) estimate.Component {
		t.Fatal("solver must not be called without a base value")
		return estimate.Component{}
	}}).Analyze(base, nil)

	if report.BaseValue != nil {
		t.Error("expected nil base value")
	}
	if report.Error == "" {
		t.Error("expected an explicit error message")
	}
}

func TestAnalyzeDerivesVariablesFromComponent(t *testing.T) {
	price := facts.NewFact("average_price", "demand", facts.Num(12000))
	customers := facts.NewFact("total_potential_customers", "demand", facts.Num(5000))

	base := component(60_000_000, facts.ConfidenceHigh)
	base.DataUsed = []facts.Fact{*price, *customers}

	report := NewAnalyzer(linearSolver(60_000_000, "average_price")).Analyze(base, nil)

	if len(report.Tests) != 2 {
		t.Fatalf("expected a test per consumed numeric fact, got %d", len(report.Tests))
	}
}
