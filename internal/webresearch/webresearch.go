// Package webresearch assembles a company research dossier: discovered
// pages, scraped content, search briefs, and a best-effort mission
// statement. It sits on top of discovery and scrape and is the only place
// that fails hard — and only for an unsafe domain.
package webresearch

import (
	"context"
	"strings"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/types"
	"github.com/jonathan/prep-coach/internal/urlsafe"
)

// missionExcerptLen bounds the text pulled into StructuredInfo.Mission.
const missionExcerptLen = 500

// URLDiscoverer plans which pages to scrape for a domain.
type URLDiscoverer interface {
	DiscoverURLs(ctx context.Context, domain string, maxCandidates int) []string
	LastSearchResults() []types.SearchResult
}

// PageScraper turns URLs into page-key -> markdown content.
type PageScraper interface {
	ScrapeMarkdown(ctx context.Context, urls []string, maxPages int, allowCrawlFallback bool) map[string]string
}

// Researcher runs the web side of a prep session.
type Researcher struct {
	discoverer URLDiscoverer
	scraper    PageScraper
	logger     *events.Logger

	// Fast trims scraping to 2 pages and disables the crawl fallback.
	Fast bool
}

// New creates a Researcher.
func New(discoverer URLDiscoverer, scraper PageScraper, logger *events.Logger) *Researcher {
	return &Researcher{discoverer: discoverer, scraper: scraper, logger: logger}
}

// ResearchCompany researches one company domain. The only error it returns
// is urlsafe.InvalidDomainError; every downstream failure degrades to an
// emptier dossier instead.
func (r *Researcher) ResearchCompany(ctx context.Context, domain string) (*types.WebResearch, error) {
	if !urlsafe.IsSafeDomain(domain) {
		return nil, &urlsafe.InvalidDomainError{Domain: domain}
	}

	name := CompanyName(domain)
	if r.logger != nil {
		r.logger.Log("perceive", "", "ok", 0, map[string]any{
			"domain":  domain,
			"company": name,
		})
	}

	maxPages := 6
	if r.Fast {
		maxPages = 2
	}

	urls := r.discoverer.DiscoverURLs(ctx, domain, 0)
	content := map[string]string{}
	if len(urls) > 0 {
		content = r.scraper.ScrapeMarkdown(ctx, urls, maxPages, !r.Fast)
	}

	return &types.WebResearch{
		CompanyDomain:  domain,
		CompanyName:    name,
		SearchResults:  r.discoverer.LastSearchResults(),
		WebsiteContent: content,
		StructuredInfo: types.CompanyInfo{
			Mission: missionExcerpt(content),
		},
	}, nil
}

// missionExcerpt pulls a short mission blurb from the about page, or the
// homepage when no about page was captured.
func missionExcerpt(content map[string]string) string {
	text := content["about"]
	if text == "" {
		text = content["home"]
	}
	text = strings.TrimSpace(text)
	if len(text) > missionExcerptLen {
		text = text[:missionExcerptLen]
	}
	return text
}

// tldTokens are public-suffix labels stripped from the right of a hostname
// when deriving a display name. Covers the common cases without a full
// suffix list; "acme.co.uk" and "jobs.example.io" both resolve correctly.
var tldTokens = map[string]bool{
	"com": true, "org": true, "net": true, "io": true, "ai": true,
	"app": true, "dev": true, "gov": true, "edu": true, "co": true,
	"us": true, "uk": true, "ca": true, "au": true, "de": true,
	"jp": true, "tech": true, "info": true,
}

// CompanyName derives a human-readable company name from a domain:
// stripe.com -> Stripe, jobs.example.io -> Example, acme.co.uk -> Acme.
func CompanyName(domain string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(strings.Trim(host, "."))
	if host == "" {
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) > 1 && parts[0] == "www" {
		parts = parts[1:]
	}
	for len(parts) > 1 && tldTokens[parts[len(parts)-1]] {
		parts = parts[:len(parts)-1]
	}

	name := parts[len(parts)-1]
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return titleCase(name)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
