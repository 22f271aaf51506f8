package discovery

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/prep-coach/internal/llm"
	"github.com/jonathan/prep-coach/internal/prompts"
)

// selectionSchema validates the ranking model's response. Extra keys are
// tolerated; the three canonical ones must be strings when present.
const selectionSchema = `{
	"type": "object",
	"properties": {
		"about":   {"type": "string"},
		"team":    {"type": "string"},
		"careers": {"type": "string"}
	},
	"additionalProperties": true
}`

// LLMRanker asks a cheap model to pick canonical page URLs from the
// candidate list. Any failure along the way (prompt load, generation,
// malformed JSON) degrades to an empty Selection.
type LLMRanker struct {
	client llm.Client
}

// NewLLMRanker wraps an LLM client for candidate ranking.
func NewLLMRanker(client llm.Client) *LLMRanker {
	return &LLMRanker{client: client}
}

// Rank implements Ranker. It is deterministic at the API level (temperature
// zero via GenerateJSON) but still treated as advisory.
func (r *LLMRanker) Rank(ctx context.Context, site string, urls []string) Selection {
	if r.client == nil || len(urls) == 0 {
		return Selection{}
	}

	tmpl, err := prompts.Get("discovery.json", "rank-urls")
	if err != nil {
		return Selection{}
	}
	prompt := prompts.Format(tmpl, map[string]string{
		"Site": site,
		"URLs": strings.Join(urls, "\n"),
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return Selection{}
	}
	return parseSelection(raw)
}

// parseSelection decodes and validates the ranking response. Models
// occasionally answer with "leadership" or "jobs" instead of the canonical
// keys; those aliases are honored when the canonical key is absent.
func parseSelection(raw string) Selection {
	loader := gojsonschema.NewStringLoader(raw)
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(selectionSchema), loader)
	if err != nil || !result.Valid() {
		return Selection{}
	}

	var picks map[string]string
	if err := json.Unmarshal([]byte(raw), &picks); err != nil {
		// Re-decode loosely: non-string values under alias keys would have
		// passed schema validation but fail the strict map decode.
		var loose map[string]any
		if err := json.Unmarshal([]byte(raw), &loose); err != nil {
			return Selection{}
		}
		picks = make(map[string]string, len(loose))
		for k, v := range loose {
			if s, ok := v.(string); ok {
				picks[k] = s
			}
		}
	}

	sel := Selection{
		About:   picks["about"],
		Team:    picks["team"],
		Careers: picks["careers"],
	}
	if sel.Team == "" {
		sel.Team = picks["leadership"]
	}
	if sel.Careers == "" {
		sel.Careers = picks["jobs"]
	}
	return sel
}
