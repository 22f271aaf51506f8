package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/prep-coach/internal/config"
	"github.com/jonathan/prep-coach/internal/discovery"
	"github.com/jonathan/prep-coach/internal/email"
	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/llm"
	"github.com/jonathan/prep-coach/internal/report"
	"github.com/jonathan/prep-coach/internal/scrape"
	"github.com/jonathan/prep-coach/internal/webresearch"
)

// agent bundles the wired components for one invocation.
type agent struct {
	cfg        *config.Config
	logger     *events.Logger
	exec       *gateway.Executor
	llm        llm.Client
	researcher *webresearch.Researcher
	analyzer   *email.Analyzer
	coach      *report.Coach
}

// newAgent builds the component graph from environment configuration.
// Event logs go to stderr when debug is set so stdout stays clean for
// report and JSON output.
func newAgent(ctx context.Context, fastWeb, debug bool) (*agent, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var sink io.Writer = io.Discard
	if debug {
		sink = os.Stderr
	}
	logger := events.NewLogger(sink)

	exec := gateway.NewExecutor(gateway.NewHTTPClient(cfg.ArcadeBaseURL, cfg.ArcadeAPIKey), logger)

	llmCfg := llm.DefaultConfig()
	llmCfg.MaxTokens = cfg.MaxTokens
	llmClient, err := llm.NewGeminiClient(ctx, llmCfg, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	scraper := scrape.New(exec, logger)
	planner := discovery.NewPlanner(scraper, exec, discovery.NewLLMRanker(llmClient), logger)
	planner.Fast = fastWeb
	planner.ResultsPerQuery = cfg.MaxSearchResults

	researcher := webresearch.New(planner, scraper, logger)
	researcher.Fast = fastWeb

	analyzer := email.New(exec, logger)
	analyzer.MaxThreads = cfg.MaxEmails

	return &agent{
		cfg:        cfg,
		logger:     logger,
		exec:       exec,
		llm:        llmClient,
		researcher: researcher,
		analyzer:   analyzer,
		coach:      report.New(llmClient, exec, logger),
	}, nil
}

func (a *agent) close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
}
