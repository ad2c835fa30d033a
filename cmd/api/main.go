package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	apiconfig "market_sizing/pkg/api/config"
	"market_sizing/pkg/api/estimation"
	apifacts "market_sizing/pkg/api/facts"
	"market_sizing/pkg/core/agent"
	"market_sizing/pkg/core/engine"
	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/factgen"
	"market_sizing/pkg/core/facts"
	"market_sizing/pkg/core/ingest"
	"market_sizing/pkg/core/prompt"
	"market_sizing/pkg/core/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// EngineConfig mirrors config/engine.yaml
type EngineConfig struct {
	Resolver struct {
		AliasThreshold float64 `yaml:"alias_threshold"`
		FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	} `yaml:"resolver"`
	Friction estimate.FrictionPolicy `yaml:"friction"`
}

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize Prompt Library
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
	}

	// Initialize agent manager from config
	modelData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(modelData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Fact store, optionally hydrated from Postgres
	factStore := facts.NewMemoryStore()
	sessionID := os.Getenv("SESSION_ID")
	if sessionID == "" {
		sessionID = "default"
	}

	var auditSink engine.AuditSink
	if os.Getenv("DATABASE_URL") != "" {
		ctx := context.Background()
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Database unavailable, running in-memory only: %v\n", err)
		} else {
			defer store.Close()
			if loaded, err := store.NewFactRepo().LoadFacts(ctx, sessionID); err != nil {
				fmt.Printf("[WARNING] Failed to hydrate facts: %v\n", err)
			} else {
				factStore = loaded
				fmt.Printf("[STORE] Hydrated %d facts for session %s\n", factStore.Len(), sessionID)
			}
			auditSink = store.NewComponentRepo(sessionID)
		}
	}

	eng := engine.NewEngine(factStore)
	if auditSink != nil {
		eng.SetAuditSink(auditSink)
	}

	// Apply engine tuning if config/engine.yaml exists
	if data, err := os.ReadFile("config/engine.yaml"); err == nil {
		var engCfg EngineConfig
		if err := yaml.Unmarshal(data, &engCfg); err != nil {
			fmt.Printf("[WARNING] Bad engine.yaml, using defaults: %v\n", err)
		} else {
			if engCfg.Resolver.AliasThreshold > 0 {
				eng.Solver().Resolver().AliasThreshold = engCfg.Resolver.AliasThreshold
			}
			if engCfg.Resolver.FuzzyThreshold > 0 {
				eng.Solver().Resolver().FuzzyThreshold = engCfg.Resolver.FuzzyThreshold
			}
			if engCfg.Friction.MaturityBase > 0 {
				eng.Solver().SetFrictionPolicy(engCfg.Friction)
			}
			fmt.Println("[CONFIG] Applied engine.yaml tuning")
		}
	}

	generator := factgen.NewGenerator(agentMgr)
	ingestor := ingest.NewIngestor(ingest.NewFetcher(".cache/ingest"))

	// Config endpoints
	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Fact endpoints
	factsHandler := apifacts.NewHandler(factStore, eng, generator, ingestor)
	http.HandleFunc("/api/facts", factsHandler.HandleList)
	http.HandleFunc("/api/facts/add", factsHandler.HandleAdd)
	http.HandleFunc("/api/facts/generate", factsHandler.HandleGenerate)
	http.HandleFunc("/api/facts/ingest", factsHandler.HandleIngest)

	// Estimation endpoints
	estHandler := estimation.NewHandler(eng)
	http.HandleFunc("/api/estimate", estHandler.HandleEstimate)
	http.HandleFunc("/api/estimate/all", estHandler.HandleAllEstimations)
	http.HandleFunc("/api/sensitivity", estHandler.HandleSensitivity)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - GET  /api/facts")
	fmt.Println("  - POST /api/facts/add")
	fmt.Println("  - POST /api/facts/generate")
	fmt.Println("  - POST /api/facts/ingest")
	fmt.Println("  - POST /api/estimate")
	fmt.Println("  - POST /api/estimate/all")
	fmt.Println("  - POST /api/sensitivity")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
