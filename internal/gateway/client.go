// Package gateway wraps the remote tool-execution service behind a uniform
// call-and-normalize interface. It is the single choke point for every
// external fetch, search, mail, and document call the agent makes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the hosted tool gateway endpoint.
const DefaultBaseURL = "https://api.arcade.dev"

// defaultTimeout bounds a single tool execution; slow tools (crawls) are
// asynchronous on the gateway side and polled separately.
const defaultTimeout = 60 * time.Second

// Client executes a named remote tool and returns its decoded response.
// Implementations must surface failures as errors, never as silent empties.
type Client interface {
	ExecuteTool(ctx context.Context, toolName string, input map[string]any, userID string) (any, error)
}

// ToolError reports a non-success response from the gateway.
type ToolError struct {
	Tool       string
	StatusCode int
	Body       string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed with status %d: %s", e.Tool, e.StatusCode, e.Body)
}

// HTTPClient is the production Client, talking JSON over HTTPS.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient creates a gateway client. An empty baseURL uses the default.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// ExecuteTool invokes the named tool with the given input. The decoded JSON
// body is returned as-is; shape normalization belongs to the Executor.
func (c *HTTPClient) ExecuteTool(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
	reqBody := map[string]any{
		"tool_name": toolName,
		"input":     input,
	}
	if userID != "" {
		reqBody["user_id"] = userID
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tools/execute", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tool %s request failed: %w", toolName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read tool response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ToolError{Tool: toolName, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Some tools answer with plain text.
		return string(body), nil
	}
	return decoded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
