// Package store provides optional PostgreSQL persistence for prep runs. The
// agent works without it; when DATABASE_URL is set, each run, its research
// artifacts, and the final report are recorded.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool, verifies it, and creates the
// schema when missing.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prep_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			company_domain TEXT NOT NULL,
			company_name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS research_artifacts (
			run_id UUID NOT NULL REFERENCES prep_runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS prep_reports (
			run_id UUID PRIMARY KEY REFERENCES prep_runs(id) ON DELETE CASCADE,
			report TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Run is one row of prep_runs.
type Run struct {
	ID            uuid.UUID
	CompanyDomain string
	CompanyName   string
	Status        string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// CreateRun records the start of a prep run and returns its ID.
func (s *Store) CreateRun(ctx context.Context, companyDomain, companyName string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO prep_runs (company_domain, company_name, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		companyDomain, companyName,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as completed or failed.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE prep_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveResearch stores a research artifact (web research, email insight) as
// JSONB under a kind key, replacing any prior artifact of the same kind.
func (s *Store) SaveResearch(ctx context.Context, runID uuid.UUID, kind string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal %s artifact: %w", kind, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO research_artifacts (run_id, kind, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, kind) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, kind, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s artifact: %w", kind, err)
	}
	return nil
}

// GetResearch retrieves a research artifact's raw JSON, or nil when absent.
func (s *Store) GetResearch(ctx context.Context, runID uuid.UUID, kind string) ([]byte, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM research_artifacts WHERE run_id = $1 AND kind = $2`,
		runID, kind,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s artifact: %w", kind, err)
	}
	return content, nil
}

// SaveReport stores the final report text for a run.
func (s *Store) SaveReport(ctx context.Context, runID uuid.UUID, report string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prep_reports (run_id, report)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET report = $2, created_at = NOW()`,
		runID, report,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_domain, company_name, status, created_at, completed_at
		 FROM prep_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.CompanyDomain, &run.CompanyName, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
