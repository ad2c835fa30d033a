package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"market_sizing/pkg/core/agent"
	"market_sizing/pkg/core/engine"
	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/factgen"
	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/prompt"
	"market_sizing/pkg/core/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// seedFile is the JSON shape `-facts` expects: a flat list of facts.
type seedFile struct {
	Facts []seedFact `json:"facts"`
}

type seedFact struct {
	Key        string   `json:"key"`
	Category   string   `json:"category"`
	Number     *float64 `json:"number,omitempty"`
	Text       string   `json:"text,omitempty"`
	List       []string `json:"list,omitempty"`
	Unit       string   `json:"unit"`
	Source     string   `json:"source"`
	SourceType string   `json:"source_type"`
	Confidence string   `json:"confidence"`
}

func loadSeedFacts(path string, fs facts.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("bad facts file %s: %w", path, err)
	}
	for _, s := range seed.Facts {
		var value facts.FactValue
		switch {
		case s.Number != nil:
			value = facts.Num(*s.Number)
		case len(s.List) > 0:
			value = facts.List(s.List...)
		default:
			value = facts.Text(s.Text)
		}
		f := facts.NewFact(s.Key, s.Category, value)
		f.Unit = s.Unit
		f.Source = s.Source
		f.SourceType = facts.SourceType(strings.ToUpper(s.SourceType))
		f.Confidence = facts.ConfidenceLevel(strings.ToLower(s.Confidence))
		if err := fs.Put(f); err != nil {
			return err
		}
	}
	return nil
}

// seedDemoFacts loads the built-in B2B SaaS scenario used when no facts
// file is supplied.
func seedDemoFacts(fs facts.Store) {
	put := func(key, category string, v facts.FactValue, unit, source string, st facts.SourceType, c facts.ConfidenceLevel) {
		f := facts.NewFact(key, category, v)
		f.Unit = unit
		f.Source = source
		f.SourceType = st
		f.Confidence = c
		fs.Put(f)
	}

	put("tam_global_market", "macro", facts.Num(1e10), "USD", "analyst report", facts.SourceSecondary, facts.ConfidenceMedium)
	put("sam_percent", "macro", facts.Num(0.20), "ratio", "internal segmentation", facts.SourceInternal, facts.ConfidenceMedium)
	put("som_share", "macro", facts.Num(0.05), "ratio", "internal target", facts.SourceInternal, facts.ConfidenceLow)

	put("total_potential_customers", "demand", facts.Num(5000), "customers", "directory scan", facts.SourceSecondary, facts.ConfidenceHigh)
	put("average_price", "demand", facts.Num(12000), "USD", "pricing survey", facts.SourcePrimary, facts.ConfidenceHigh)

	put("competitor_count", "supply", facts.List("Acme", "Globex", "Initech"), "companies", "market scan", facts.SourceSecondary, facts.ConfidenceMedium)
	put("competitor_avg_revenue", "supply", facts.Num(2.5e6), "USD", "filings", facts.SourceSecondary, facts.ConfidenceMedium)

	put("sales_cycle_months", "market_reality", facts.Num(8), "months", "sales team", facts.SourcePrimary, facts.ConfidenceHigh)
	put("market_maturity", "market_reality", facts.Num(0.6), "ratio", "analyst estimate", facts.SourceEstimate, facts.ConfidenceLow)
}

// generateFacts runs the LLM collaborator over every research topic.
func generateFacts(product string, fs facts.Store) error {
	if err := prompt.LoadFromDirectory("resources"); err != nil {
		return fmt.Errorf("prompt library required for -generate: %w", err)
	}

	modelData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(modelData, &agentCfg)
	gen := factgen.NewGenerator(agent.NewManager(agentCfg))

	topics := []struct{ topic, category string }{
		{"market_landscape", "macro"},
		{"customer_base", "demand"},
		{"pricing", "demand"},
		{"competitors", "supply"},
	}
	for _, t := range topics {
		n, err := gen.GenerateInto(context.Background(), fs, product, t.topic, t.category)
		if err != nil {
			fmt.Printf("[WARNING] topic %s failed: %v\n", t.topic, err)
			continue
		}
		fmt.Printf("  %s: %d facts\n", t.topic, n)
	}
	if ms, ok := fs.(*facts.MemoryStore); ok && ms.Len() == 0 {
		return fmt.Errorf("no facts generated")
	}
	return nil
}

func printComponent(c estimate.Component) {
	status := "EMPTY"
	if c.Complete() {
		status = fmt.Sprintf("$ %.0f", floatVal(c.EstimatedValue))
	}
	fmt.Printf("%-14s | %-32s | %-12s | %s\n", c.Category, c.Name, c.Confidence, status)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	factsPath := flag.String("facts", "", "JSON file of seed facts (default: built-in demo scenario)")
	product := flag.String("generate", "", "generate facts for this product description via the LLM collaborator")
	category := flag.String("sensitivity", "demand", "category to run sensitivity analysis on")
	audit := flag.Bool("audit", false, "persist derived components to Postgres (needs DATABASE_URL)")
	flag.Parse()

	factStore := facts.NewMemoryStore()
	switch {
	case *factsPath != "":
		if err := loadSeedFacts(*factsPath, factStore); err != nil {
			log.Fatalf("Failed to load facts: %v", err)
		}
		fmt.Printf("Loaded %d facts from %s\n", factStore.Len(), *factsPath)
	case *product != "":
		if err := generateFacts(*product, factStore); err != nil {
			log.Fatalf("Fact generation failed: %v", err)
		}
		fmt.Printf("Generated %d facts for %q\n", factStore.Len(), *product)
	default:
		seedDemoFacts(factStore)
		fmt.Printf("Loaded %d built-in demo facts\n", factStore.Len())
	}

	eng := engine.NewEngine(factStore)

	if *audit {
		ctx := context.Background()
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("DATABASE_URL required for -audit: %v", err)
		}
		defer store.Close()
		sessionID := os.Getenv("SESSION_ID")
		if sessionID == "" {
			sessionID = "pipeline"
		}
		eng.SetAuditSink(store.NewComponentRepo(sessionID))
	}

	fmt.Println("\n################################################################################")
	fmt.Println("                   MARKET SIZING ENGINE - ESTIMATION REPORT")
	fmt.Println("################################################################################")

	// [1] ESTIMATIONS
	fmt.Println("\n[1] ESTIMATIONS BY CATEGORY")
	fmt.Printf("%-14s | %-32s | %-12s | %s\n", "Category", "Method", "Confidence", "Value")
	fmt.Println(strings.Repeat("-", 80))
	all := eng.AllEstimations(nil)
	for _, c := range all {
		printComponent(c)
		if *audit {
			if err := eng.Audit(context.Background(), c); err != nil {
				fmt.Printf("[WARNING] audit failed: %v\n", err)
			}
		}
	}

	// [2] BEST METHOD
	best := estimate.SelectBest(all[0], all[1], all[2], all[3])
	fmt.Println("\n[2] BEST METHOD")
	if best.Complete() {
		fmt.Printf("%s (%s): $ %.0f  [confidence: %s]\n", best.Name, best.Category, floatVal(best.EstimatedValue), best.Confidence)
		if best.CalculationBreakdown != "" {
			fmt.Printf("    %s\n", best.CalculationBreakdown)
		}
	} else {
		fmt.Println("No method could produce an estimate.")
		if best.MissingData != "" {
			fmt.Printf("    %s\n", best.MissingData)
		}
	}

	// [3] SENSITIVITY
	base := eng.SolveCategory(estimate.Category(*category), nil)
	report := eng.SensitivityAnalysis(base, nil)
	fmt.Printf("\n[3] SENSITIVITY (%s)\n", *category)
	if report.Error != "" {
		fmt.Printf("    %s\n", report.Error)
		return
	}
	fmt.Printf("%-28s | %10s | %10s | %8s | %s\n", "Variable", "-20%", "+20%", "Score", "Class")
	fmt.Println(strings.Repeat("-", 80))
	for _, t := range report.Tests {
		fmt.Printf("%-28s | %9.1f%% | %9.1f%% | %8.1f | %s\n",
			t.Variable.Key, t.DeltaLowPct, t.DeltaHighPct, t.Score, t.Classification)
	}
	fmt.Printf("\nMost sensitive: ")
	for i, t := range report.MostSensitive {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(t.Variable.Key)
	}
	fmt.Printf("\nConfidence after sensitivity: %s\n", report.ConfidenceAdjusted)
}
