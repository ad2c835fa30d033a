// Package estimation exposes the market sizing engine over HTTP.
package estimation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"market_sizing/pkg/core/engine"
	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/sensitivity"
)

// Handler holds dependencies for estimation endpoints
type Handler struct {
	Engine *engine.Engine
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{Engine: eng}
}

type EstimateRequest struct {
	Category  string             `json:"category"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
}

type AllEstimationsResponse struct {
	Components []estimate.Component `json:"components"`
	Best       estimate.Component   `json:"best"`
}

type SensitivityRequest struct {
	Category  string                 `json:"category"`
	Overrides map[string]float64     `json:"overrides,omitempty"`
	Variables []sensitivity.Variable `json:"variables,omitempty"`
}

// cors sets the permissive headers used in local dev and answers preflight.
// Returns true when the request was a handled OPTIONS preflight.
func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func parseCategory(raw string) (estimate.Category, error) {
	cat := estimate.Category(strings.ToLower(strings.TrimSpace(raw)))
	switch cat {
	case estimate.CategoryMacro, estimate.CategoryDemand, estimate.CategorySupply:
		return cat, nil
	default:
		return "", fmt.Errorf("unknown category: %q", raw)
	}
}

// HandleEstimate solves a single category.
// POST /api/estimate {"category": "demand", "overrides": {...}}
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := parseCategory(req.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fmt.Printf("[ESTIMATION] Solving category %s (%d overrides)\n", cat, len(req.Overrides))
	component := h.Engine.SolveCategory(cat, req.Overrides)

	if err := h.Engine.Audit(context.Background(), component); err != nil {
		fmt.Printf("[WARNING] Failed to audit component: %v\n", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(component)
}

// HandleAllEstimations solves every category plus triangulation and returns
// the best-method pick alongside.
// POST /api/estimate/all {"overrides": {...}}
func (h *Handler) HandleAllEstimations(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req EstimateRequest
	if r.Body != nil {
		// Body is optional here; ignore decode errors for empty bodies
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	all := h.Engine.AllEstimations(req.Overrides)
	best := estimate.SelectBest(all[0], all[1], all[2], all[3])

	resp := AllEstimationsResponse{Components: all, Best: best}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleSensitivity solves the requested category and perturbs its inputs.
// POST /api/sensitivity {"category": "demand", "variables": [...]}
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req SensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := parseCategory(req.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	base := h.Engine.SolveCategory(cat, req.Overrides)
	report := h.Engine.SensitivityAnalysis(base, req.Variables)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
