package factgen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"market_sizing/pkg/core/facts"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GroundedGenerator talks to Gemini directly through the generative-ai-go
// SDK instead of the provider abstraction. It exists for the research flow
// where we want model-side retrieval for current market statistics rather
// than a plain chat completion.
type GroundedGenerator struct {
	modelName string
	client    *genai.Client
}

func NewGroundedGenerator(ctx context.Context) (*GroundedGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GroundedGenerator{
		modelName: "gemini-2.0-flash-exp",
		client:    client,
	}, nil
}

func (g *GroundedGenerator) Close() error {
	return g.client.Close()
}

// Research asks the model for facts about one topic and returns the
// validated survivors. Same wire contract as Generator, same repair funnel.
func (g *GroundedGenerator) Research(ctx context.Context, systemPrompt, userPrompt, category string) ([]*facts.Fact, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	fullPrompt := fmt.Sprintf("%s\n\nTask: %s", systemPrompt, userPrompt)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("grounded generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return parseCandidates(sb.String(), category)
}
