package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_EmitsOneJSONLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Log("act:scrape", "Firecrawl.ScrapeUrl", "ok", 120*time.Millisecond, map[string]any{"url": "https://example.com/about"})
	logger.Log("act:scrape", "Firecrawl.ScrapeUrl", "empty", 0, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, logger.RunID(), first.RunID)
	assert.Equal(t, "act:scrape", first.Step)
	assert.Equal(t, "Firecrawl.ScrapeUrl", first.Tool)
	assert.Equal(t, "ok", first.Outcome)
	assert.Equal(t, int64(120), first.DurationMS)
	assert.Equal(t, "https://example.com/about", first.Extra["url"])

	var second Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, first.RunID, second.RunID, "events within a run share one correlation id")
	assert.Nil(t, second.Extra)
}

func TestNewLogger_GeneratesDistinctRunIDs(t *testing.T) {
	a := NewLogger(&bytes.Buffer{})
	b := NewLogger(&bytes.Buffer{})
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestTimer_LogsElapsedDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	timer := logger.Timed("decide:map_site", "Firecrawl.MapWebsite")
	timer.Result("ok", nil)

	var evt Event
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &evt))
	assert.Equal(t, "decide:map_site", evt.Step)
	assert.Equal(t, "ok", evt.Outcome)
	assert.GreaterOrEqual(t, evt.DurationMS, int64(0))
}
