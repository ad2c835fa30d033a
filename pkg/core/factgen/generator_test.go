package factgen

import (
	"context"
	"strings"
	"testing"

	"market_sizing/pkg/core/agent"
	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/llm"
	"market_sizing/pkg/core/prompt"
)

func newTestManager(response string, err error) *agent.Manager {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "mock"})
	mgr.RegisterProvider("mock", &llm.MockProvider{Response: response, Err: err})
	return mgr
}

func registerTestPrompt(t *testing.T) {
	t.Helper()
	prompt.Get().Clear()
	err := prompt.Get().Register(&prompt.PromptTemplate{
		ID:             "factgen.pricing",
		Category:       "factgen",
		SystemPrompt:   "You research market pricing. Respond with JSON.",
		UserPromptTmpl: "Product: {{.ProductDescription}}",
	})
	if err != nil {
		t.Fatalf("failed to register test prompt: %v", err)
	}
}

func TestGenerateParsesFencedPayload(t *testing.T) {
	registerTestPrompt(t)

	response := "```json\n" + `{
		"facts": [
			{"key": "Average_Price", "number": 49.99, "unit": "USD", "source": "vendor pricing pages", "source_type": "secondary", "confidence": "medium"},
			{"key": "competitor_count", "list": ["Acme", "Globex", "Initech"], "unit": "companies", "source": "directory scan", "source_type": "SECONDARY", "confidence": "high"},
			{"key": "market_maturity", "text": "growing", "unit": "", "source": "analyst blog", "source_type": "made_up", "confidence": "??"}
		]
	}` + "\n```"

	gen := NewGenerator(newTestManager(response, nil))
	got, err := gen.Generate(context.Background(), "CRM for dentists", "pricing", "demand")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(got))
	}

	price := got[0]
	if price.Key != "average_price" {
		t.Errorf("key not lowercased: %q", price.Key)
	}
	if n, ok := price.Value.AsNumber(); !ok || n != 49.99 {
		t.Errorf("expected numeric 49.99, got %v ok=%v", n, ok)
	}
	if price.SourceType != facts.SourceSecondary {
		t.Errorf("source type not normalized: %s", price.SourceType)
	}
	if price.Confidence != facts.ConfidenceMedium {
		t.Errorf("confidence not normalized: %s", price.Confidence)
	}

	roster := got[1]
	if n, ok := roster.Value.AsNumber(); !ok || n != 3 {
		t.Errorf("list fact should coerce to length 3, got %v", n)
	}

	maturity := got[2]
	if maturity.SourceType != facts.SourceEstimate {
		t.Errorf("unknown source type should fall back to ESTIMATE, got %s", maturity.SourceType)
	}
	if maturity.Confidence != facts.ConfidenceLow {
		t.Errorf("unknown confidence should fall back to low, got %s", maturity.Confidence)
	}
	for _, f := range got {
		if f.Category != "demand" {
			t.Errorf("fact %s landed in category %q, want demand", f.Key, f.Category)
		}
	}
}

func TestGenerateDropsUnusableCandidates(t *testing.T) {
	registerTestPrompt(t)

	// One candidate without a key, one without any value, one good.
	response := `{"facts": [
		{"key": "", "number": 5},
		{"key": "orphan"},
		{"key": "purchase_frequency", "number": 4, "unit": "per year", "source": "survey", "source_type": "PRIMARY", "confidence": "high"}
	]}`

	gen := NewGenerator(newTestManager(response, nil))
	got, err := gen.Generate(context.Background(), "CRM for dentists", "pricing", "demand")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "purchase_frequency" {
		t.Fatalf("expected the single valid candidate to survive, got %+v", got)
	}
}

func TestGenerateRepairsSloppyJSON(t *testing.T) {
	registerTestPrompt(t)

	// Single quotes and a trailing comma: the repair funnel should cope.
	response := `{'facts': [{'key': 'average_price', 'number': 30, 'unit': 'USD', 'source': 'estimate', 'source_type': 'ESTIMATE', 'confidence': 'low'},]}`

	gen := NewGenerator(newTestManager(response, nil))
	got, err := gen.Generate(context.Background(), "CRM for dentists", "pricing", "demand")
	if err != nil {
		t.Fatalf("repairable payload should parse, got error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(got))
	}
}

func TestGenerateAllCandidatesBadIsError(t *testing.T) {
	registerTestPrompt(t)

	gen := NewGenerator(newTestManager(`{"facts": [{"key": ""}]}`, nil))
	if _, err := gen.Generate(context.Background(), "x", "pricing", "demand"); err == nil {
		t.Fatal("expected error when no candidate survives")
	}
}

func TestGenerateMissingPromptIsError(t *testing.T) {
	prompt.Get().Clear()

	gen := NewGenerator(newTestManager("{}", nil))
	_, err := gen.Generate(context.Background(), "x", "no_such_topic", "demand")
	if err == nil || !strings.Contains(err.Error(), "no prompt") {
		t.Fatalf("expected missing-prompt error, got %v", err)
	}
}

func TestGenerateIntoStoresFacts(t *testing.T) {
	registerTestPrompt(t)

	response := `{"facts": [
		{"key": "average_price", "number": 120, "unit": "USD", "source": "pricing page", "source_type": "SECONDARY", "confidence": "high"},
		{"key": "purchase_frequency", "number": 2, "unit": "per year", "source": "survey", "source_type": "PRIMARY", "confidence": "high"}
	]}`

	store := facts.NewMemoryStore()
	gen := NewGenerator(newTestManager(response, nil))

	stored, err := gen.GenerateInto(context.Background(), store, "CRM for dentists", "pricing", "demand")
	if err != nil {
		t.Fatalf("GenerateInto returned error: %v", err)
	}
	if stored != 2 {
		t.Errorf("expected 2 stored facts, got %d", stored)
	}
	if got := store.Value("average_price", 0); got != 120 {
		t.Errorf("store did not receive average_price, got %g", got)
	}
}
