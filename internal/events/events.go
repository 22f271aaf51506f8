// Package events provides a run-scoped structured event logger.
// Every remote tool call emits exactly one Event, which makes the latency
// and outcome of flaky discovery/scrape runs visible in one place.
package events

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one audit record for an external call attempt.
type Event struct {
	RunID      string         `json:"run_id"`
	Step       string         `json:"step"`
	Tool       string         `json:"tool"`
	Outcome    string         `json:"outcome"`
	DurationMS int64          `json:"duration_ms"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Logger emits JSON-line events to a single append-only sink.
// It is an explicit collaborator, not a global: components that perform
// remote calls take a *Logger and share one correlation id per run.
type Logger struct {
	mu    sync.Mutex
	sink  io.Writer
	runID string
}

// NewLogger creates a Logger with a fresh run id. A nil sink writes to stdout.
func NewLogger(sink io.Writer) *Logger {
	if sink == nil {
		sink = os.Stdout
	}
	return &Logger{sink: sink, runID: uuid.NewString()}
}

// RunID returns the correlation id shared by all events of this run.
func (l *Logger) RunID() string {
	return l.runID
}

// Log writes one event. Writes are serialized so each event lands as a
// complete line even when scrape workers log concurrently.
func (l *Logger) Log(step, tool, outcome string, duration time.Duration, extra map[string]any) {
	evt := Event{
		RunID:      l.runID,
		Step:       step,
		Tool:       tool,
		Outcome:    outcome,
		DurationMS: duration.Milliseconds(),
		Extra:      extra,
	}

	line, err := json.Marshal(evt)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.sink.Write(append(line, '\n'))
}

// Timer measures one operation and logs its outcome on Result.
type Timer struct {
	logger *Logger
	step   string
	tool   string
	start  time.Time
}

// Timed starts a timer for the given step and tool.
func (l *Logger) Timed(step, tool string) *Timer {
	return &Timer{logger: l, step: step, tool: tool, start: time.Now()}
}

// Result logs the timed operation with the given outcome.
func (t *Timer) Result(outcome string, extra map[string]any) {
	t.logger.Log(t.step, t.tool, outcome, time.Since(t.start), extra)
}
