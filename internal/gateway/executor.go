package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/prep-coach/internal/events"
)

// Executor wraps a Client with per-call timing, outcome logging, and response
// normalization. It performs no retries: retry policy belongs to callers,
// which know which degradation tier they are in.
type Executor struct {
	client Client
	logger *events.Logger
}

// NewExecutor creates an Executor around the given client and logger.
func NewExecutor(client Client, logger *events.Logger) *Executor {
	return &Executor{client: client, logger: logger}
}

// Execute invokes a remote tool, records one event with the elapsed duration
// and outcome, and returns the normalized payload. Errors propagate to the
// caller unchanged after being logged.
func (e *Executor) Execute(ctx context.Context, step, toolName string, input map[string]any, userID string) (Payload, error) {
	start := time.Now()

	raw, err := e.client.ExecuteTool(ctx, toolName, input, userID)
	if err != nil {
		e.logger.Log(step, toolName, "error:"+errKind(err), time.Since(start), map[string]any{"error": err.Error()})
		return Payload{}, err
	}

	payload := Normalize(raw)
	extra := map[string]any{}
	if keys := payload.Keys(); keys != nil {
		extra["keys"] = keys
	}
	e.logger.Log(step, toolName, "ok", time.Since(start), extra)
	return payload, nil
}

// errKind names the error's concrete type for the outcome field, mirroring
// the keys (step, tool, outcome) the log pipeline aggregates on.
func errKind(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
