// Package estimate implements the market sizing estimation engine core:
// the strategy catalog, the component solver, confidence blending, market
// reality friction, triangulation across categories, and best-method
// selection. Everything here is a pure function of a fact store snapshot
// plus optional what-if overrides; no state survives between calls.
package estimate

import (
	"fmt"

	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/resolve"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category identifies an estimation approach family
type Category string

const (
	CategoryMacro  Category = "macro"  // top-down: TAM -> SAM -> SOM
	CategoryDemand Category = "demand" // bottom-up: customers x price
	CategorySupply Category = "supply" // supply-led: competitor reconstruction
)

// Triangulation is not a solvable category; it aggregates the other three
const CategoryTriangulation Category = "triangulation"

// =============================================================================
// STRATEGY
// =============================================================================

// Strategy declares one way to compute a market size estimate within a
// category: which canonical facts it needs and the arithmetic that combines
// them. Strategies are static, declared once per category in catalog.go,
// never mutated at runtime.
type Strategy struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	FormulaTemplate string            `json:"formula_template"` // e.g. "{customers} * {price}"
	RequiredInputs  map[string]string `json:"required_inputs"`  // local var -> canonical fact key
	Description     string            `json:"description"`
	Methodology     string            `json:"methodology"`

	// RealityAdjustable strategies get the market friction multiplier
	// applied to their raw result
	RealityAdjustable bool `json:"reality_adjustable"`
}

// result is the internal, strategy-level outcome before component assembly
type result struct {
	value         *float64
	formulaUsed   string
	details       string
	confidence    facts.ConfidenceLevel
	missingInputs []string
	usedFacts     []facts.Fact
	resolutions   []resolve.Resolution
	realityFactor float64
	frictionNote  string
}

// =============================================================================
// COMPONENT
// =============================================================================

// ComponentStatus marks whether a category produced a value
type ComponentStatus string

const (
	StatusEmpty    ComponentStatus = "empty"
	StatusComplete ComponentStatus = "complete"
)

// Component is the public, category-level estimation output. Produced fresh
// on every solve; a view over the fact store at a point in time, never
// persisted by the engine itself.
// Invariant: Status == complete if and only if EstimatedValue != nil.
type Component struct {
	ID                string          `json:"id"`
	Category          Category        `json:"category"`
	Name              string          `json:"name"`
	Role              string          `json:"role"`
	MethodDescription string          `json:"method_description"`
	DataUsed          []facts.Fact    `json:"data_used,omitempty"`
	MissingData       string          `json:"missing_data_strategy,omitempty"`
	EstimatedValue    *float64        `json:"estimated_value"`
	Unit              string          `json:"unit"`
	Confidence        facts.ConfidenceLevel `json:"confidence"`
	Status            ComponentStatus `json:"status"`
	Color             string          `json:"color"` // presentation hint

	SelectedStrategy     string `json:"selected_strategy_name,omitempty"`
	CalculationBreakdown string `json:"calculation_breakdown,omitempty"`
	MethodologyText      string `json:"methodology_text,omitempty"`
	StrategicNarrative   string `json:"strategic_narrative,omitempty"`
	RealityScore         float64 `json:"reality_score"`

	// FuzzyBindings lists every non-exact fact resolution so consumers can
	// distinguish exact from guessed inputs
	FuzzyBindings []resolve.Resolution `json:"fuzzy_bindings,omitempty"`

	// ContributingMethodCount is set by triangulation: how many underlying
	// methods fed the consensus. Typed here so the best-method selector
	// never has to parse breakdown text.
	ContributingMethodCount int `json:"contributing_method_count,omitempty"`
}

// Complete reports whether the component carries a value
func (c Component) Complete() bool {
	return c.Status == StatusComplete && c.EstimatedValue != nil
}

// Value returns the estimated value, or 0 when empty
func (c Component) Value() float64 {
	if c.EstimatedValue == nil {
		return 0
	}
	return *c.EstimatedValue
}

func floatPtr(f float64) *float64 { return &f }

// componentMeta carries per-category presentation defaults
type componentMeta struct {
	id    string
	name  string
	role  string
	color string
	desc  string
}

var categoryMeta = map[Category]componentMeta{
	CategoryMacro: {
		id:    "macro",
		name:  "Macro (Top-Down)",
		role:  "Top-down extrapolation from total market size",
		color: "#3b82f6",
		desc:  "Narrows the global market through serviceable and obtainable shares",
	},
	CategoryDemand: {
		id:    "demand",
		name:  "Demand (Bottom-Up)",
		role:  "Bottom-up build from customer and pricing data",
		color: "#22c55e",
		desc:  "Multiplies addressable customers by realized pricing",
	},
	CategorySupply: {
		id:    "supply",
		name:  "Supply-Led",
		role:  "Reconstruction from the supply side of the market",
		color: "#f97316",
		desc:  "Rebuilds market volume from competitor revenues and capacity",
	},
	CategoryTriangulation: {
		id:    "triangulation",
		name:  "Triangulated Consensus",
		role:  "Average across all valid estimation methods",
		color: "#a855f7",
		desc:  "Unweighted mean of every category that produced a value",
	},
}

// emptyComponent builds the empty shell for a category
func emptyComponent(cat Category, missing string) Component {
	meta := categoryMeta[cat]
	return Component{
		ID:                meta.id,
		Category:          cat,
		Name:              meta.name,
		Role:              meta.role,
		MethodDescription: meta.desc,
		MissingData:       missing,
		Confidence:        facts.ConfidenceLow,
		Status:            StatusEmpty,
		Color:             meta.color,
		RealityScore:      1.0,
	}
}

// Describe renders a one-line summary for CLI reports
func (c Component) Describe() string {
	if !c.Complete() {
		return fmt.Sprintf("%s: no estimate (%s)", c.Name, c.MissingData)
	}
	return fmt.Sprintf("%s: %.0f %s (confidence %s, strategy %s)",
		c.Name, c.Value(), c.Unit, c.Confidence, c.SelectedStrategy)
}
