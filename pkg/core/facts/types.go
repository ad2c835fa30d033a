// Package facts implements the Fact Store for market sizing.
// A Fact is a single numeric (or textual) market observation with provenance:
// where it came from, how trustworthy it is, and what unit it carries.
// The estimation engine reads facts; ingestion and LLM collaborators write them.
package facts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ENUMS
// =============================================================================

// SourceType classifies the provenance of a fact
type SourceType string

const (
	SourcePrimary   SourceType = "PRIMARY"   // Direct measurement (own sales data, census)
	SourceSecondary SourceType = "SECONDARY" // Published research, analyst reports
	SourceProxy     SourceType = "PROXY"     // Adjacent-market stand-in
	SourceEstimate  SourceType = "ESTIMATE"  // Derived or LLM-generated guess
	SourceInternal  SourceType = "INTERNAL"  // Internal assumption
	SourceMissing   SourceType = "MISSING"   // Placeholder for a known gap
)

// ConfidenceLevel indicates data reliability
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Score maps a confidence label onto the 0-3 scale used for blending.
// Unknown labels score 0 so a malformed fact never inflates confidence.
func (c ConfidenceLevel) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// FACT VALUE
// =============================================================================

// ValueKind identifies what a FactValue holds
type ValueKind string

const (
	ValueNumber ValueKind = "NUMBER"
	ValueText   ValueKind = "TEXT"
	ValueList   ValueKind = "LIST" // e.g. a list of competitor names
)

// FactValue is a tagged union over the value shapes a fact may carry.
// Most facts are plain numbers; competitor lists and qualitative notes are not.
type FactValue struct {
	Kind   ValueKind `json:"kind"`
	Number float64   `json:"number,omitempty"`
	Text   string    `json:"text,omitempty"`
	List   []string  `json:"list,omitempty"`
}

// Num builds a numeric FactValue
func Num(v float64) FactValue {
	return FactValue{Kind: ValueNumber, Number: v}
}

// Text builds a textual FactValue
func Text(s string) FactValue {
	return FactValue{Kind: ValueText, Text: s}
}

// List builds a list FactValue
func List(items ...string) FactValue {
	return FactValue{Kind: ValueList, List: items}
}

// AsNumber coerces the value to a float64 where that makes sense.
// Lists coerce to their length (competitor_count stored as a roster still
// answers "how many competitors").
func (v FactValue) AsNumber() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Number, true
	case ValueList:
		return float64(len(v.List)), true
	default:
		return 0, false
	}
}

// =============================================================================
// FACT
// =============================================================================

// Fact is a single market observation with full provenance
type Fact struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`      // canonical or raw key, e.g. "average_price"
	Category   string          `json:"category"` // e.g. "demand", "macro", "market_reality"
	Value      FactValue       `json:"value"`
	Unit       string          `json:"unit"` // "USD", "customers", "months"
	Source     string          `json:"source"`
	SourceType SourceType      `json:"source_type"`
	Confidence ConfidenceLevel `json:"confidence"`
	Notes      string          `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFact creates a fact with a generated ID and timestamps
func NewFact(key, category string, value FactValue) *Fact {
	now := time.Now()
	return &Fact{
		ID:         uuid.NewString(),
		Key:        key,
		Category:   category,
		Value:      value,
		SourceType: SourceEstimate,
		Confidence: ConfidenceLow,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Describe renders a one-line human summary used in calculation breakdowns
func (f *Fact) Describe() string {
	if n, ok := f.Value.AsNumber(); ok {
		return fmt.Sprintf("%s = %g %s (%s, confidence %s)", f.Key, n, f.Unit, f.SourceType, f.Confidence)
	}
	return fmt.Sprintf("%s = %q (%s, confidence %s)", f.Key, f.Value.Text, f.SourceType, f.Confidence)
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the Fact Store contract consumed by the estimation engine.
// The engine only reads; collaborators (ingestion, LLM generation, API) write.
// Callers must not mutate the store while an engine call is in flight —
// take a Snapshot first when a writer may be active.
type Store interface {
	// Facts returns facts filtered by category and/or key ("" = any)
	Facts(category, key string) []Fact

	// Value returns the numeric value for a key, or def when absent
	Value(key string, def float64) float64

	// AllKeys returns every distinct fact key (used by fuzzy resolution)
	AllKeys() []string

	// Put inserts a fact, replacing any existing fact with the same
	// key+category (most recent evidence wins)
	Put(f *Fact) error
}
