package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prep-coach/internal/events"
)

type fakeClient struct {
	response any
	err      error
	calls    int
	lastTool string
}

func (f *fakeClient) ExecuteTool(_ context.Context, toolName string, _ map[string]any, _ string) (any, error) {
	f.calls++
	f.lastTool = toolName
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func TestExecute_LogsOkWithKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewLogger(&buf)
	client := &fakeClient{response: map[string]any{"markdown": "body", "status": "done"}}
	exec := NewExecutor(client, logger)

	payload, err := exec.Execute(context.Background(), "act:scrape", "Firecrawl.ScrapeUrl", map[string]any{"url": "https://a.com"}, "")
	require.NoError(t, err)
	assert.Equal(t, "body", payload.StringField("markdown"))
	assert.Equal(t, 1, client.calls)

	var evt events.Event
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &evt))
	assert.Equal(t, "ok", evt.Outcome)
	assert.Equal(t, "Firecrawl.ScrapeUrl", evt.Tool)
	assert.Equal(t, []any{"markdown", "status"}, evt.Extra["keys"])
}

func TestExecute_LogsErrorKindAndPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewLogger(&buf)
	toolErr := &ToolError{Tool: "GoogleSearch.Search", StatusCode: 429, Body: "rate limited"}
	exec := NewExecutor(&fakeClient{err: toolErr}, logger)

	_, err := exec.Execute(context.Background(), "act:web_search", "GoogleSearch.Search", nil, "")
	require.Error(t, err)

	var te *ToolError
	require.True(t, errors.As(err, &te), "error must propagate unchanged")
	assert.Equal(t, 429, te.StatusCode)

	var evt events.Event
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &evt))
	assert.True(t, strings.HasPrefix(evt.Outcome, "error:"), "outcome %q", evt.Outcome)
	assert.Contains(t, evt.Outcome, "ToolError")
	assert.Contains(t, evt.Extra["error"], "429")
}

func TestExecute_NormalizesEnvelope(t *testing.T) {
	logger := events.NewLogger(&bytes.Buffer{})
	client := &fakeClient{response: map[string]any{
		"output": map[string]any{"value": map[string]any{"threads": []any{}}},
	}}
	exec := NewExecutor(client, logger)

	payload, err := exec.Execute(context.Background(), "act:search_gmail", "Gmail.SearchThreads", nil, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, KindMap, payload.Kind())
	assert.NotNil(t, payload.ListField("threads"))
}
