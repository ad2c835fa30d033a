package estimate

import (
	"fmt"
	"strings"

	"market_sizing/pkg/core/facts"
)

// =============================================================================
// TRIANGULATION
// =============================================================================

// Triangulate averages the valid components from all categories into a
// consensus component. A single contributing method carries no extra
// certainty, so the result is labeled medium confidence only when at least
// two methods agree on having a value at all.
func Triangulate(components []Component) Component {
	var values []float64
	var names []string
	for _, c := range components {
		if c.Complete() {
			values = append(values, c.Value())
			names = append(names, c.Name)
		}
	}

	if len(values) == 0 {
		comp := emptyComponent(CategoryTriangulation, "no estimation method produced a value")
		return comp
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	confidence := facts.ConfidenceLow
	if len(values) >= 2 {
		confidence = facts.ConfidenceMedium
	}

	meta := categoryMeta[CategoryTriangulation]
	return Component{
		ID:                meta.id,
		Category:          CategoryTriangulation,
		Name:              meta.name,
		Role:              meta.role,
		MethodDescription: meta.desc,
		EstimatedValue:    floatPtr(mean),
		Unit:              "USD",
		Confidence:        confidence,
		Status:            StatusComplete,
		Color:             meta.color,
		SelectedStrategy:  "Unweighted Mean",
		CalculationBreakdown: fmt.Sprintf("mean(%s) over %d method(s) = %g",
			strings.Join(names, ", "), len(values), mean),
		MethodologyText:         "Arithmetic mean of every category estimate that produced a value.",
		RealityScore:            1.0,
		ContributingMethodCount: len(values),
	}
}
