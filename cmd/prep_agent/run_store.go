package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/prep-coach/internal/report"
	"github.com/jonathan/prep-coach/internal/store"
	"github.com/jonathan/prep-coach/internal/types"
)

// runHandle identifies the current run in the optional store. The zero
// value means persistence is disabled.
type runHandle struct {
	id uuid.UUID
	ok bool
}

func beginRun(ctx context.Context, st *store.Store, domain, company string) (runHandle, error) {
	id, err := st.CreateRun(ctx, domain, company)
	if err != nil {
		return runHandle{}, fmt.Errorf("failed to record run: %w", err)
	}
	return runHandle{id: id, ok: true}, nil
}

// saveRunArtifacts persists research data best-effort; persistence failures
// never abort a run that already has results.
func saveRunArtifacts(ctx context.Context, st *store.Store, run runHandle, insight *types.EmailInsight, research *types.WebResearch) {
	if st == nil || !run.ok {
		return
	}
	if insight != nil {
		if err := st.SaveResearch(ctx, run.id, "email_insight", insight); err != nil {
			fmt.Printf("Warning: could not persist email insight: %v\n", err)
		}
	}
	if research != nil {
		if err := st.SaveResearch(ctx, run.id, "web_research", research); err != nil {
			fmt.Printf("Warning: could not persist web research: %v\n", err)
		}
	}
}

func completeRun(ctx context.Context, st *store.Store, run runHandle, reportText string) {
	if st == nil || !run.ok {
		return
	}
	if err := st.SaveReport(ctx, run.id, reportText); err != nil {
		fmt.Printf("Warning: could not persist report: %v\n", err)
	}
	if err := st.CompleteRun(ctx, run.id, "completed"); err != nil {
		fmt.Printf("Warning: could not mark run complete: %v\n", err)
	}
}

func failRun(ctx context.Context, st *store.Store, run runHandle) {
	if st == nil || !run.ok {
		return
	}
	_ = st.CompleteRun(ctx, run.id, "failed")
}

func saveReportLocally(company, reportText, outDir string) (string, error) {
	return report.SaveLocal(company, reportText, outDir)
}
