// Package engine wires the estimation core into the single facade the API
// and CLI collaborators consume: per-category solving, triangulation,
// best-method selection, sensitivity analysis, and the consolidated fact
// table. The fact store is an injected dependency, never a process global,
// so tests and concurrent sessions each get isolated state.
package engine

import (
	"context"
	"fmt"

	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/sensitivity"
)

// AuditSink receives derived components for persistence. Implemented by
// store.ComponentRepo; nil disables auditing.
type AuditSink interface {
	SaveComponent(ctx context.Context, c estimate.Component) error
}

// Engine is the public estimation facade
type Engine struct {
	store    facts.Store
	solver   *estimate.Solver
	analyzer *sensitivity.Analyzer
	audit    AuditSink
}

// NewEngine creates an engine over an injected fact store
func NewEngine(store facts.Store) *Engine {
	solver := estimate.NewSolver(store)
	return &Engine{
		store:    store,
		solver:   solver,
		analyzer: sensitivity.NewAnalyzer(solver),
	}
}

// Solver exposes the underlying solver for policy/threshold configuration
func (e *Engine) Solver() *estimate.Solver {
	return e.solver
}

// SetAuditSink enables persistence of derived components
func (e *Engine) SetAuditSink(sink AuditSink) {
	e.audit = sink
}

// SolveCategory produces the estimation component for one category
func (e *Engine) SolveCategory(cat estimate.Category, overrides map[string]float64) estimate.Component {
	return e.solver.Solve(cat, overrides)
}

// AllEstimations solves every category and appends the triangulated
// consensus: [macro, demand, supply, triangulation]
func (e *Engine) AllEstimations(overrides map[string]float64) []estimate.Component {
	macro := e.solver.Solve(estimate.CategoryMacro, overrides)
	demand := e.solver.Solve(estimate.CategoryDemand, overrides)
	supply := e.solver.Solve(estimate.CategorySupply, overrides)
	tri := estimate.Triangulate([]estimate.Component{macro, demand, supply})
	return []estimate.Component{macro, demand, supply, tri}
}

// BestMethod solves everything and applies the fixed selection priority
func (e *Engine) BestMethod(overrides map[string]float64) estimate.Component {
	all := e.AllEstimations(overrides)
	return estimate.SelectBest(all[0], all[1], all[2], all[3])
}

// SensitivityAnalysis perturbs the base component's inputs (or the supplied
// hypotheses) and reports output elasticity
func (e *Engine) SensitivityAnalysis(base estimate.Component, hypotheses []sensitivity.Variable) sensitivity.Report {
	return e.analyzer.Analyze(base, hypotheses)
}

// Audit persists a derived component through the configured sink, if any
func (e *Engine) Audit(ctx context.Context, c estimate.Component) error {
	if e.audit == nil {
		return nil
	}
	if err := e.audit.SaveComponent(ctx, c); err != nil {
		return fmt.Errorf("failed to audit component %s: %w", c.ID, err)
	}
	return nil
}

// =============================================================================
// CONSOLIDATED FACT TABLE
// =============================================================================

// FactRow annotates a fact with the components that consumed it
type FactRow struct {
	Fact   facts.Fact `json:"fact"`
	UsedBy []string   `json:"used_by,omitempty"`
}

// ConsolidatedFacts returns every stored fact annotated with which
// component(s) used it in a no-override solve of all categories
func (e *Engine) ConsolidatedFacts() []FactRow {
	all := e.AllEstimations(nil)

	usage := make(map[string][]string) // fact key -> component names
	for _, comp := range all {
		for _, f := range comp.DataUsed {
			already := false
			for _, name := range usage[f.Key] {
				if name == comp.Name {
					already = true
					break
				}
			}
			if !already {
				usage[f.Key] = append(usage[f.Key], comp.Name)
			}
		}
	}

	var rows []FactRow
	for _, f := range e.store.Facts("", "") {
		rows = append(rows, FactRow{Fact: f, UsedBy: usage[f.Key]})
	}
	return rows
}
