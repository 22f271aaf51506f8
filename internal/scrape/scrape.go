// Package scrape turns candidate URLs into clean markdown content via the
// remote fetch tools, degrading through strict extraction, relaxed
// extraction, and finally a bounded crawl of the seed domain.
package scrape

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/urlsafe"
)

// KeyPages are path tokens that identify information-dense company pages.
var KeyPages = []string{
	"about", "about-us", "our-story", "company", "team", "people", "leadership",
	"careers", "jobs", "culture", "values", "mission",
}

const (
	// maxCandidateURLs caps the site-map prober's output.
	maxCandidateURLs = 8
	// crawlPollAttempts bounds the crawl-status polling loop.
	crawlPollAttempts = 5
	// crawlPollDelay is the fixed wait between status polls.
	crawlPollDelay = 500 * time.Millisecond
	// maxFallbackPages caps pages taken from a crawl when none match a keyword.
	maxFallbackPages = 3
)

// Scraper fetches page content through the tool gateway.
type Scraper struct {
	exec   *gateway.Executor
	logger *events.Logger

	// Sleep is injectable so tests can simulate poll delays without waiting.
	Sleep func(time.Duration)
	// Concurrency bounds the per-URL scrape workers. 1 (the default) keeps
	// calls sequential, which also keeps log ordering stable.
	Concurrency int
}

// New creates a Scraper with sequential fetching and real sleeps.
func New(exec *gateway.Executor, logger *events.Logger) *Scraper {
	return &Scraper{
		exec:        exec,
		logger:      logger,
		Sleep:       time.Sleep,
		Concurrency: 1,
	}
}

// FindCandidateURLs returns candidate about/team/careers pages for a domain,
// sanitized and deduplicated, capped at 8. The deterministic seed list is
// always present; site-map links that mention a key-page token are merged in
// best-effort, so this never fails once the domain validates.
func (s *Scraper) FindCandidateURLs(ctx context.Context, domain string) ([]string, error) {
	if !urlsafe.IsSafeDomain(domain) {
		return nil, &urlsafe.InvalidDomainError{Domain: domain}
	}

	base := urlsafe.SanitizeURL(domain)
	root := urlsafe.EnsureHTTPS(domain)

	urls := make([]string, 0, 1+len(KeyPages))
	urls = append(urls, root)
	for _, p := range KeyPages {
		urls = append(urls, root+"/"+p)
	}

	payload, err := s.exec.Execute(ctx, "decide:map_site", "Firecrawl.MapWebsite", map[string]any{
		"url":                base,
		"ignore_sitemap":     true,
		"include_subdomains": false,
		"limit":              25,
	}, "")
	if err == nil {
		items := payload.ListField("links")
		if items == nil {
			items = payload.ListField("data")
		}
		for _, it := range items {
			switch v := it.(type) {
			case string:
				if containsKeyPage(v) {
					urls = append(urls, urlsafe.SanitizeURL(v))
				}
			case map[string]any:
				if u, ok := v["url"].(string); ok && containsKeyPage(u) {
					urls = append(urls, urlsafe.SanitizeURL(u))
				}
			}
		}
	}

	return truncate(dedupe(urls), maxCandidateURLs), nil
}

// ScrapeMarkdown fetches markdown content for each URL, keyed by the final
// path segment (or "home"). A failing or empty page never aborts the batch.
// When every URL comes back empty and fallback is permitted, a bounded crawl
// of the first URL's domain supplies last-resort content.
func (s *Scraper) ScrapeMarkdown(ctx context.Context, urls []string, maxPages int, allowCrawlFallback bool) map[string]string {
	results := make(map[string]string)

	if s.Concurrency > 1 {
		s.scrapeParallel(ctx, urls, maxPages, results)
	} else {
		for _, u := range urls {
			if len(results) >= maxPages {
				break
			}
			key, content := s.scrapeOne(ctx, u)
			if content == "" {
				continue
			}
			if _, dup := results[key]; !dup {
				results[key] = content
			}
		}
	}

	if len(results) == 0 && allowCrawlFallback && len(urls) > 0 {
		s.crawlFallback(ctx, urls[0], results)
	}
	return results
}

// scrapeParallel runs the per-URL loop under a bounded worker pool. The
// maxPages cap applies globally across workers via the shared results map.
func (s *Scraper) scrapeParallel(ctx context.Context, urls []string, maxPages int, results map[string]string) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)

	for _, u := range urls {
		mu.Lock()
		full := len(results) >= maxPages
		mu.Unlock()
		if full {
			break
		}

		u := u
		g.Go(func() error {
			key, content := s.scrapeOne(gctx, u)
			if content == "" {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if len(results) < maxPages {
				if _, dup := results[key]; !dup {
					results[key] = content
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// scrapeOne fetches a single URL: strict main-content extraction first, then
// one relaxed retry. An error on either call skips the URL.
func (s *Scraper) scrapeOne(ctx context.Context, u string) (string, string) {
	reqURL := urlsafe.SanitizeURL(u)
	timer := s.logger.Timed("reflect:scrape", "Firecrawl.ScrapeUrl")

	payload, err := s.exec.Execute(ctx, "act:scrape", "Firecrawl.ScrapeUrl", map[string]any{
		"url":               reqURL,
		"formats":           []string{"markdown"},
		"only_main_content": true,
		"timeout":           20000,
		"wait_for":          50,
	}, "")
	if err != nil {
		return "", ""
	}
	if content := ExtractContent(payload); content != "" {
		timer.Result("ok", map[string]any{"url": reqURL, "chars": len(content)})
		return PageKey(u), content
	}

	payload, err = s.exec.Execute(ctx, "act:scrape", "Firecrawl.ScrapeUrl", map[string]any{
		"url":               reqURL,
		"formats":           []string{"markdown"},
		"only_main_content": false,
		"timeout":           25000,
		"wait_for":          150,
	}, "")
	if err != nil {
		return "", ""
	}
	if content := ExtractContent(payload); content != "" {
		timer.Result("ok", map[string]any{"url": reqURL, "chars": len(content), "retry": true})
		return PageKey(u), content
	}

	timer.Result("empty", map[string]any{"url": reqURL})
	return "", ""
}

// crawlFallback starts a depth-1, five-page crawl of the seed's domain,
// polls until the crawl reaches a terminal status or the attempt budget runs
// out, and harvests whatever pages it produced. Every failure leaves the
// results map as-is.
func (s *Scraper) crawlFallback(ctx context.Context, seed string, results map[string]string) {
	start, err := s.exec.Execute(ctx, "act:crawl_start", "Firecrawl.CrawlWebsite", map[string]any{
		"url":                  urlsafe.SanitizeURL(seed),
		"max_depth":            1,
		"limit":                5,
		"ignore_sitemap":       true,
		"allow_external_links": false,
		"async_crawl":          true,
	}, "")
	if err != nil {
		return
	}

	crawlID := start.StringField("id")
	if crawlID == "" {
		crawlID = start.StringField("job_id")
	}
	if crawlID == "" {
		if data := start.MapField("data"); data != nil {
			crawlID, _ = data["id"].(string)
		}
	}
	if crawlID == "" {
		return
	}

	for i := 0; i < crawlPollAttempts; i++ {
		status, err := s.exec.Execute(ctx, "act:crawl_status", "Firecrawl.GetCrawlStatus", map[string]any{"crawl_id": crawlID}, "")
		if err != nil {
			return
		}
		stat := status.StringField("status")
		if stat == "" {
			if data := status.MapField("data"); data != nil {
				stat, _ = data["status"].(string)
			}
		}
		if isTerminalCrawlStatus(stat) {
			break
		}
		s.Sleep(crawlPollDelay)
	}

	data, err := s.exec.Execute(ctx, "act:crawl_data", "Firecrawl.GetCrawlData", map[string]any{"crawl_id": crawlID}, "")
	if err != nil {
		return
	}
	pages := data.ListField("data")
	if pages == nil {
		pages = data.ListField("pages")
	}

	// Prefer pages whose URL mentions a key-page token.
	for _, it := range pages {
		page, ok := it.(map[string]any)
		if !ok {
			continue
		}
		pageURL, _ := page["url"].(string)
		if !containsKeyPage(pageURL) {
			continue
		}
		if content := ExtractContent(gateway.Normalize(page)); content != "" {
			key := PageKey(pageURL)
			if key == "home" {
				key = "page"
			}
			results[key] = content
		}
	}
	if len(results) > 0 {
		return
	}

	// Otherwise take the first few pages with any extractable content.
	for _, it := range pages {
		page, ok := it.(map[string]any)
		if !ok {
			continue
		}
		content := ExtractContent(gateway.Normalize(page))
		if content == "" {
			continue
		}
		pageURL, _ := page["url"].(string)
		key := PageKey(pageURL)
		if key == "home" {
			key = "page"
		}
		results[key] = content
		if len(results) >= maxFallbackPages {
			return
		}
	}
}

func isTerminalCrawlStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}

func containsKeyPage(u string) bool {
	lower := strings.ToLower(u)
	for _, k := range KeyPages {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
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

func truncate(urls []string, n int) []string {
	if len(urls) > n {
		return urls[:n]
	}
	return urls
}
