//go:build integration

package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prep-coach/internal/types"
)

func getTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	s, err := Connect(context.Background(), dsn)
	require.NoError(t, err, "failed to connect to test database")
	return s
}

func TestIntegration_RunLifecycle(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "test.example.com", "Example")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, runID)

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "running", run.Status)
	assert.Equal(t, "test.example.com", run.CompanyDomain)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, s.CompleteRun(ctx, runID, "completed"))

	run, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.NotNil(t, run.CompletedAt)

	_, err = s.pool.Exec(ctx, "DELETE FROM prep_runs WHERE id = $1", runID)
	require.NoError(t, err)
}

func TestIntegration_ResearchArtifactUpsert(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "test.example.com", "Example")
	require.NoError(t, err)
	defer s.pool.Exec(ctx, "DELETE FROM prep_runs WHERE id = $1", runID)

	research := &types.WebResearch{
		CompanyDomain: "test.example.com",
		CompanyName:   "Example",
		WebsiteContent: map[string]string{
			"about": "We test things.",
		},
	}
	require.NoError(t, s.SaveResearch(ctx, runID, "web_research", research))

	// Upsert replaces the earlier artifact of the same kind.
	research.CompanyName = "Example Updated"
	require.NoError(t, s.SaveResearch(ctx, runID, "web_research", research))

	raw, err := s.GetResearch(ctx, runID, "web_research")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var got types.WebResearch
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Example Updated", got.CompanyName)

	missing, err := s.GetResearch(ctx, runID, "no_such_kind")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_SaveReport(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "test.example.com", "Example")
	require.NoError(t, err)
	defer s.pool.Exec(ctx, "DELETE FROM prep_runs WHERE id = $1", runID)

	require.NoError(t, s.SaveReport(ctx, runID, "# Report v1"))
	require.NoError(t, s.SaveReport(ctx, runID, "# Report v2"))

	var report string
	err = s.pool.QueryRow(ctx, "SELECT report FROM prep_reports WHERE run_id = $1", runID).Scan(&report)
	require.NoError(t, err)
	assert.Equal(t, "# Report v2", report)
}
