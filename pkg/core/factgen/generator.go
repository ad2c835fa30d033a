// Package factgen generates candidate market facts with an LLM and funnels
// them through repair + validation before they reach the Fact Store. The
// estimation engine itself never calls a model; this package is the only
// bridge between providers and facts.
package factgen

import (
	"context"
	"fmt"
	"strings"

	"market_sizing/pkg/core/agent"
	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/prompt"
	"market_sizing/pkg/core/utils"
)

// AgentType is the role name the agent.Manager resolves to a provider.
const AgentType = "fact_generator"

// FactCandidate is the wire shape a model must emit for one fact.
// Exactly one of Number / Text / List should be set.
type FactCandidate struct {
	Key        string   `json:"key"`
	Number     *float64 `json:"number,omitempty"`
	Text       string   `json:"text,omitempty"`
	List       []string `json:"list,omitempty"`
	Unit       string   `json:"unit"`
	Source     string   `json:"source"`
	SourceType string   `json:"source_type"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes,omitempty"`
}

// factPayload is the envelope the prompts instruct the model to produce.
type factPayload struct {
	Facts []FactCandidate `json:"facts"`
}

// Generator turns a product description into validated facts for a category.
type Generator struct {
	manager *agent.Manager
}

func NewGenerator(mgr *agent.Manager) *Generator {
	return &Generator{manager: mgr}
}

// Generate asks the model for facts on one topic and returns the candidates
// that survived repair and validation. Facts land in the given category.
func (g *Generator) Generate(ctx context.Context, productDescription, topic, category string) ([]*facts.Fact, error) {
	pt, err := prompt.Get().GetPrompt("factgen." + topic)
	if err != nil {
		return nil, fmt.Errorf("no prompt for topic %q: %w", topic, err)
	}

	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.NewContext().
		Set("ProductDescription", productDescription).
		Set("Category", category))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt %s: %w", pt.ID, err)
	}

	options := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}

	raw, err := g.manager.ExecutePrompt(ctx, AgentType, userPrompt, pt.SystemPrompt, options)
	if err != nil {
		return nil, fmt.Errorf("fact generation call failed: %w", err)
	}

	return parseCandidates(raw, category)
}

// parseCandidates runs the Draft-Validate-Fix loop on a raw model response.
func parseCandidates(raw, category string) ([]*facts.Fact, error) {
	cleaned := utils.CleanMarkdown(raw)

	var payload factPayload
	if _, err := utils.SmartParse(cleaned, &payload); err != nil {
		return nil, fmt.Errorf("unparseable fact payload: %w", err)
	}

	var out []*facts.Fact
	for _, c := range payload.Facts {
		f, err := c.toFact(category)
		if err != nil {
			fmt.Printf("[FACTGEN] dropping candidate %q: %v\n", c.Key, err)
			continue
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model returned no usable facts")
	}
	return out, nil
}

func (c FactCandidate) toFact(category string) (*facts.Fact, error) {
	key := strings.TrimSpace(strings.ToLower(c.Key))
	if key == "" {
		return nil, fmt.Errorf("empty key")
	}

	var value facts.FactValue
	switch {
	case c.Number != nil:
		value = facts.Num(*c.Number)
	case len(c.List) > 0:
		value = facts.List(c.List...)
	case c.Text != "":
		value = facts.Text(c.Text)
	default:
		return nil, fmt.Errorf("candidate carries no value")
	}

	f := facts.NewFact(key, category, value)
	f.Unit = c.Unit
	f.Source = c.Source
	f.SourceType = normalizeSourceType(c.SourceType)
	f.Confidence = normalizeConfidence(c.Confidence)
	f.Notes = c.Notes
	return f, nil
}

// normalizeSourceType maps free-form model output onto the SourceType enum.
// Anything unrecognized becomes ESTIMATE — a model claim without a named
// provenance is a guess.
func normalizeSourceType(s string) facts.SourceType {
	switch facts.SourceType(strings.ToUpper(strings.TrimSpace(s))) {
	case facts.SourcePrimary:
		return facts.SourcePrimary
	case facts.SourceSecondary:
		return facts.SourceSecondary
	case facts.SourceProxy:
		return facts.SourceProxy
	case facts.SourceInternal:
		return facts.SourceInternal
	default:
		return facts.SourceEstimate
	}
}

func normalizeConfidence(s string) facts.ConfidenceLevel {
	switch facts.ConfidenceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case facts.ConfidenceHigh:
		return facts.ConfidenceHigh
	case facts.ConfidenceMedium:
		return facts.ConfidenceMedium
	default:
		return facts.ConfidenceLow
	}
}

// GenerateInto runs Generate and writes the survivors to the store.
// Returns how many facts were stored.
func (g *Generator) GenerateInto(ctx context.Context, store facts.Store, productDescription, topic, category string) (int, error) {
	generated, err := g.Generate(ctx, productDescription, topic, category)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, f := range generated {
		if err := store.Put(f); err != nil {
			fmt.Printf("[FACTGEN] store rejected fact %q: %v\n", f.Key, err)
			continue
		}
		stored++
	}
	fmt.Printf("[FACTGEN] stored %d/%d facts for topic %s\n", stored, len(generated), topic)
	return stored, nil
}
