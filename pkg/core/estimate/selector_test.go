package estimate

import (
	"testing"
)

func TestSelectBestPriority(t *testing.T) {
	macro := completeComponent(CategoryMacro, 1)
	demand := completeComponent(CategoryDemand, 2)
	supply := completeComponent(CategorySupply, 3)

	tri := completeComponent(CategoryTriangulation, 4)
	tri.ContributingMethodCount = 3

	// Convergent triangulation trumps everything
	if got := SelectBest(macro, demand, supply, tri); got.Category != CategoryTriangulation {
		t.Errorf("expected triangulation, got %s", got.Category)
	}

	// A single-method triangulation does not qualify
	tri.ContributingMethodCount = 1
	if got := SelectBest(macro, demand, supply, tri); got.Category != CategoryDemand {
		t.Errorf("expected demand over 1-method triangulation, got %s", got.Category)
	}

	// Demand out -> supply
	emptyDemand := emptyComponent(CategoryDemand, "")
	if got := SelectBest(macro, emptyDemand, supply, tri); got.Category != CategorySupply {
		t.Errorf("expected supply, got %s", got.Category)
	}

	// Supply out too -> macro
	emptySupply := emptyComponent(CategorySupply, "")
	if got := SelectBest(macro, emptyDemand, emptySupply, tri); got.Category != CategoryMacro {
		t.Errorf("expected macro, got %s", got.Category)
	}
}

func TestSelectBestAllEmpty(t *testing.T) {
	macro := emptyComponent(CategoryMacro, "missing tam_global_market")
	demand := emptyComponent(CategoryDemand, "")
	supply := emptyComponent(CategorySupply, "")
	tri := emptyComponent(CategoryTriangulation, "")

	got := SelectBest(macro, demand, supply, tri)
	if got.Status != StatusEmpty || got.Category != CategoryMacro {
		t.Errorf("expected macro's empty shell, got %+v", got)
	}
	if got.MissingData == "" {
		t.Error("empty shell must carry the missing-data explanation")
	}
}
