package prompt

// Convenience functions for common prompt operations

// GetFactGenPrompt returns a fact generator's system prompt by topic name
func GetFactGenPrompt(topic string) (string, error) {
	id := "factgen." + topic
	return Get().GetSystemPrompt(id)
}

// GetReviewPrompt returns a fact reviewer's system prompt
func GetReviewPrompt(name string) (string, error) {
	id := "review." + name
	return Get().GetSystemPrompt(id)
}

// MustGetFactGenPrompt is like GetFactGenPrompt but panics on error
func MustGetFactGenPrompt(topic string) string {
	p, err := GetFactGenPrompt(topic)
	if err != nil {
		panic(err)
	}
	return p
}

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	// Fact generation
	FactGenMarketLandscape string
	FactGenCustomerBase    string
	FactGenCompetitors     string
	FactGenPricing         string

	// Review
	ReviewFactCandidates string
}{
	FactGenMarketLandscape: "factgen.market_landscape",
	FactGenCustomerBase:    "factgen.customer_base",
	FactGenCompetitors:     "factgen.competitors",
	FactGenPricing:         "factgen.pricing",

	ReviewFactCandidates: "review.fact_candidates",
}
