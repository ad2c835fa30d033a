package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market_sizing/pkg/core/estimate"
	"market_sizing/pkg/core/facts"

	"github.com/jackc/pgx/v5"
)

// FactRepo handles persistence of facts for a market sizing session.
type FactRepo struct{}

// NewFactRepo creates a new repository instance.
func NewFactRepo() *FactRepo {
	return &FactRepo{}
}

// Schema assumption (managed by migrations):
//
// CREATE TABLE IF NOT EXISTS market_facts (
//   session_id TEXT NOT NULL,
//   key TEXT NOT NULL,
//   category TEXT NOT NULL,
//   fact_json JSONB,
//   updated_at TIMESTAMPTZ,
//   PRIMARY KEY (session_id, key, category)
// );

// SaveFact upserts a fact for a session. The key+category primary key
// mirrors the in-memory store's overwrite semantics: most recent wins.
func (r *FactRepo) SaveFact(ctx context.Context, sessionID string, f *facts.Fact) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal fact: %w", err)
	}

	query := `
		INSERT INTO market_facts (session_id, key, category, fact_json, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, key, category)
		DO UPDATE SET
			fact_json = EXCLUDED.fact_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, sessionID, f.Key, f.Category, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save fact %s: %w", f.Key, err)
	}
	return nil
}

// LoadFacts hydrates every fact of a session into a fresh in-memory store.
func (r *FactRepo) LoadFacts(ctx context.Context, sessionID string) (*facts.MemoryStore, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT fact_json FROM market_facts WHERE session_id = $1 ORDER BY updated_at`

	rows, err := pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facts for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	memStore := facts.NewMemoryStore()
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan fact row: %w", err)
		}
		var f facts.Fact
		if err := json.Unmarshal(jsonData, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fact: %w", err)
		}
		if err := memStore.Put(&f); err != nil {
			return nil, err
		}
	}
	return memStore, rows.Err()
}

// =============================================================================
// COMPONENT AUDIT
// =============================================================================

// ComponentRepo persists derived estimation components for audit.
// Implements engine.AuditSink.
type ComponentRepo struct {
	SessionID string
}

// NewComponentRepo creates an audit repository bound to a session.
func NewComponentRepo(sessionID string) *ComponentRepo {
	return &ComponentRepo{SessionID: sessionID}
}

// Schema assumption:
//
// CREATE TABLE IF NOT EXISTS estimation_audit (
//   session_id TEXT NOT NULL,
//   component_id TEXT NOT NULL,
//   component_json JSONB,
//   created_at TIMESTAMPTZ,
//   PRIMARY KEY (session_id, component_id, created_at)
// );

// SaveComponent appends a derived component to the audit trail.
// Unlike facts, audit rows are never overwritten.
func (r *ComponentRepo) SaveComponent(ctx context.Context, c estimate.Component) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal component: %w", err)
	}

	query := `
		INSERT INTO estimation_audit (session_id, component_id, component_json, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := pool.Exec(ctx, query, r.SessionID, c.ID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to audit component %s: %w", c.ID, err)
	}
	return nil
}

// LatestComponent loads the most recent audited component by ID.
func (r *ComponentRepo) LatestComponent(ctx context.Context, componentID string) (*estimate.Component, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT component_json FROM estimation_audit
		WHERE session_id = $1 AND component_id = $2
		ORDER BY created_at DESC LIMIT 1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, r.SessionID, componentID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no audited component %s for session %s", componentID, r.SessionID)
		}
		return nil, fmt.Errorf("failed to load component: %w", err)
	}

	var c estimate.Component
	if err := json.Unmarshal(jsonData, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal component: %w", err)
	}
	return &c, nil
}
