// Package facts exposes the Fact Store over HTTP: listing the consolidated
// table, manual entry, LLM generation, and statistics-page ingestion.
package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market_sizing/pkg/core/engine"
	"market_sizing/pkg/core/factgen"
	corefacts "market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/ingest"
)

// Handler holds dependencies for fact endpoints
type Handler struct {
	Store     corefacts.Store
	Engine    *engine.Engine
	Generator *factgen.Generator
	Ingestor  *ingest.Ingestor
}

func NewHandler(store corefacts.Store, eng *engine.Engine, gen *factgen.Generator, ing *ingest.Ingestor) *Handler {
	return &Handler{Store: store, Engine: eng, Generator: gen, Ingestor: ing}
}

type AddFactRequest struct {
	Key        string   `json:"key"`
	Category   string   `json:"category"`
	Number     *float64 `json:"number,omitempty"`
	Text       string   `json:"text,omitempty"`
	List       []string `json:"list,omitempty"`
	Unit       string   `json:"unit"`
	Source     string   `json:"source"`
	SourceType string   `json:"source_type"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes,omitempty"`
}

type GenerateRequest struct {
	ProductDescription string `json:"product_description"`
	Topic              string `json:"topic"`
	Category           string `json:"category"`
}

type IngestRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

type CountResponse struct {
	Stored int `json:"stored"`
}

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

// HandleList returns the consolidated fact table with usage attribution.
// GET /api/facts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}

	rows := h.Engine.ConsolidatedFacts()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HandleAdd stores a manually entered fact.
// POST /api/facts/add
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req AddFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	f, err := req.toFact()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.Put(f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

func (req AddFactRequest) toFact() (*corefacts.Fact, error) {
	key := strings.TrimSpace(strings.ToLower(req.Key))
	if key == "" {
		return nil, fmt.Errorf("fact key is required")
	}
	if req.Category == "" {
		return nil, fmt.Errorf("fact category is required")
	}

	var value corefacts.FactValue
	switch {
	case req.Number != nil:
		value = corefacts.Num(*req.Number)
	case len(req.List) > 0:
		value = corefacts.List(req.List...)
	case req.Text != "":
		value = corefacts.Text(req.Text)
	default:
		return nil, fmt.Errorf("fact needs a number, text, or list value")
	}

	f := corefacts.NewFact(key, req.Category, value)
	f.Unit = req.Unit
	f.Source = req.Source
	f.Notes = req.Notes
	if req.SourceType != "" {
		f.SourceType = corefacts.SourceType(strings.ToUpper(req.SourceType))
	} else {
		// Manual entry without provenance is an internal assumption
		f.SourceType = corefacts.SourceInternal
	}
	if req.Confidence != "" {
		f.Confidence = corefacts.ConfidenceLevel(strings.ToLower(req.Confidence))
	}
	return f, nil
}

// HandleGenerate asks the LLM collaborator for facts on a topic.
// POST /api/facts/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductDescription == "" || req.Topic == "" || req.Category == "" {
		http.Error(w, "product_description, topic and category are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	stored, err := h.Generator.GenerateInto(ctx, h.Store, req.ProductDescription, req.Topic, req.Category)
	if err != nil {
		http.Error(w, fmt.Sprintf("Fact generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CountResponse{Stored: stored})
}

// HandleIngest scrapes a statistics page into the store.
// POST /api/facts/ingest
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" || req.Category == "" {
		http.Error(w, "url and category are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	stored, err := h.Ingestor.IngestURL(ctx, h.Store, req.URL, req.Category)
	if err != nil {
		http.Error(w, fmt.Sprintf("Ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CountResponse{Stored: stored})
}
