// Package discovery plans which company pages are worth scraping. It merges
// site-map probing with targeted web searches, then asks the LLM ranking
// step to pick the canonical About/Team/Careers URLs, with deterministic
// fallbacks at every tier so a research run never dead-ends here.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/types"
	"github.com/jonathan/prep-coach/internal/urlsafe"
)

// DefaultMaxCandidates caps the deduplicated candidate list handed to the
// ranking step.
const DefaultMaxCandidates = 15

// CandidateFinder supplies site-map derived candidate URLs for a domain.
type CandidateFinder interface {
	FindCandidateURLs(ctx context.Context, domain string) ([]string, error)
}

// Ranker picks the canonical About/Team/Careers URLs from a candidate list.
// Ranking is advisory: implementations return an empty Selection on any
// failure instead of an error.
type Ranker interface {
	Rank(ctx context.Context, site string, urls []string) Selection
}

// Selection holds the ranking step's picks. Empty fields mean "no pick".
type Selection struct {
	About   string
	Team    string
	Careers string
}

// Planner orchestrates the discovery tiers for one research run.
type Planner struct {
	mapper CandidateFinder
	exec   *gateway.Executor
	ranker Ranker
	logger *events.Logger

	// Fast mode trades recall for cost: one search query instead of two, and
	// a final cap of 2 URLs instead of 6.
	Fast bool

	// ResultsPerQuery bounds each search call; zero means 5.
	ResultsPerQuery int

	lastResults []types.SearchResult
}

// NewPlanner creates a Planner. exec may be nil in constrained harnesses,
// which disables the search tier.
func NewPlanner(mapper CandidateFinder, exec *gateway.Executor, ranker Ranker, logger *events.Logger) *Planner {
	return &Planner{mapper: mapper, exec: exec, ranker: ranker, logger: logger}
}

// LastSearchResults returns the search briefs gathered during the most
// recent DiscoverURLs call, for presentation to the user. This is a side
// channel, not part of the discovery result.
func (p *Planner) LastSearchResults() []types.SearchResult {
	return p.lastResults
}

// DiscoverURLs returns the ordered, deduplicated, absolute https URLs to
// scrape for a domain. An unsafe domain yields an empty result rather than
// an error: discovery degrades to "nothing found" so the pipeline stays
// non-fatal. maxCandidates <= 0 uses DefaultMaxCandidates.
func (p *Planner) DiscoverURLs(ctx context.Context, domain string, maxCandidates int) []string {
	p.lastResults = nil
	if !urlsafe.IsSafeDomain(domain) {
		return nil
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	base := urlsafe.SanitizeURL(domain)
	site := strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	root := "https://" + strings.Trim(site, "/")

	mapped, err := p.mapper.FindCandidateURLs(ctx, domain)
	if err != nil {
		mapped = nil
	}

	// Theme-1 then theme-2 ordering keeps the candidate list stable for the
	// ranking step.
	perQuery := p.ResultsPerQuery
	if perQuery <= 0 {
		perQuery = 5
	}
	var s1, s2 []map[string]any
	if p.Fast {
		q := fmt.Sprintf("site:%s (about OR company OR team OR leadership OR careers OR jobs) -blog -press", site)
		s1 = p.webSearch(ctx, q, perQuery)
	} else {
		s1 = p.webSearch(ctx, fmt.Sprintf("site:%s (about OR company OR team OR leadership) -blog -press", site), perQuery)
		s2 = p.webSearch(ctx, fmt.Sprintf("site:%s (careers OR jobs) -blog -press", site), perQuery)
	}

	candidates := make([]string, 0, len(mapped)+len(s1)+len(s2))
	candidates = append(candidates, mapped...)
	candidates = append(candidates, extractURLs(s1, root)...)
	candidates = append(candidates, extractURLs(s2, root)...)

	p.recordSearchResults(s1, s2, mapped)

	if len(candidates) == 0 {
		candidates = []string{
			base,
			root + "/about",
			root + "/company",
			root + "/team",
			root + "/leadership",
			root + "/careers",
			root + "/jobs",
		}
	}

	unique := dedupe(candidates)
	if len(unique) > maxCandidates {
		unique = unique[:maxCandidates]
	}

	selection := p.ranker.Rank(ctx, site, unique)

	out := make([]string, 0, 3)
	for _, pick := range []string{selection.About, selection.Team, selection.Careers} {
		if pick == "" {
			continue
		}
		u := urlsafe.SanitizeURL(resolveRelative(pick, root))
		if !contains(out, u) {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		out = unique
		if len(out) > 3 {
			out = out[:3]
		}
	}

	limit := 6
	if p.Fast {
		limit = 2
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// webSearch issues one domain-scoped query through the search tool. A nil
// executor (no search capability) or any gateway failure yields an empty
// result; search is one contribution among several, never a hard dependency.
func (p *Planner) webSearch(ctx context.Context, query string, maxResults int) []map[string]any {
	if p.exec == nil {
		return nil
	}
	payload, err := p.exec.Execute(ctx, "act:web_search", "GoogleSearch.Search", map[string]any{
		"query":       query,
		"num_results": maxResults,
	}, "")
	if err != nil {
		return nil
	}

	var items []any
	if payload.Kind() == gateway.KindList {
		items = payload.List()
	} else {
		for _, key := range []string{"results", "data", "items", "organic_results"} {
			if list := payload.ListField(key); list != nil {
				items = list
				break
			}
		}
	}

	results := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			results = append(results, m)
		}
	}
	return results
}

// recordSearchResults captures briefs for reporting. When search found
// nothing but the site map did, the mapped links are surfaced with a
// "Mapped" title so the user still sees what was discovered.
func (p *Planner) recordSearchResults(s1, s2 []map[string]any, mapped []string) {
	briefs := make([]types.SearchResult, 0, len(s1)+len(s2))
	for _, it := range s1 {
		briefs = append(briefs, toBrief(it))
	}
	for _, it := range s2 {
		briefs = append(briefs, toBrief(it))
	}

	if len(briefs) == 0 && len(mapped) > 0 {
		limit := min(len(mapped), 6)
		for _, u := range mapped[:limit] {
			briefs = append(briefs, types.SearchResult{Title: "Mapped", Link: u})
		}
	}
	p.lastResults = briefs
}

func toBrief(it map[string]any) types.SearchResult {
	return types.SearchResult{
		Title:   firstString(it, "title", "name", "heading"),
		Link:    firstString(it, "link", "url", "href"),
		Snippet: firstString(it, "snippet", "description", "content"),
	}
}

func extractURLs(items []map[string]any, root string) []string {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		u := firstString(it, "link", "url", "href")
		if u == "" {
			continue
		}
		urls = append(urls, urlsafe.SanitizeURL(resolveRelative(u, root)))
	}
	return urls
}

// resolveRelative resolves root-relative paths like "/about" against the
// domain root. Protocol-relative URLs ("//cdn...") pass through.
func resolveRelative(u, root string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return root + u
	}
	return u
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
