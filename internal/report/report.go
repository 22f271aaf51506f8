// Package report synthesizes email and web research into an interview prep
// report and handles its delivery to Google Docs or the local filesystem.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/llm"
	"github.com/jonathan/prep-coach/internal/prompts"
	"github.com/jonathan/prep-coach/internal/types"
)

// Coach turns research data into coaching advice.
type Coach struct {
	llm    llm.Client
	exec   *gateway.Executor
	logger *events.Logger
}

// New creates a Coach. exec may be nil when Google Docs delivery is not
// configured; SaveToDocs then returns an error.
func New(client llm.Client, exec *gateway.Executor, logger *events.Logger) *Coach {
	return &Coach{llm: client, exec: exec, logger: logger}
}

// CreateReport generates the prep report. Generation failures never fail
// the run: a deterministic fallback report summarizing the raw findings is
// returned instead.
func (c *Coach) CreateReport(ctx context.Context, company string, insight *types.EmailInsight, research *types.WebResearch) string {
	system := prompts.MustGet("report.json", "coach-system")
	tmpl := prompts.MustGet("report.json", "coach-report")

	body := prompts.Format(tmpl, map[string]string{
		"Company":         strings.ToUpper(company),
		"TotalEmails":     strconv.Itoa(insight.TotalEmails),
		"InterviewEmails": strconv.Itoa(len(insight.InterviewRelated)),
		"ContactCount":    strconv.Itoa(len(insight.ImportantContacts)),
		"EmailSummary":    formatEmailInsights(insight),
		"WebSummary":      formatWebResearch(research),
	})

	report, err := c.llm.GenerateContent(ctx, system+"\n\n"+body, llm.TierAdvanced)
	if err != nil {
		if c.logger != nil {
			c.logger.Log("synthesize:report", "", "error:generation", 0, map[string]any{
				"company": company,
			})
		}
		return FallbackReport(company, insight, research)
	}
	return report
}

// FallbackReport is the deterministic report used when generation fails.
func FallbackReport(company string, insight *types.EmailInsight, research *types.WebResearch) string {
	searchCount, pageCount := 0, 0
	if research != nil {
		searchCount = len(research.SearchResults)
		pageCount = len(research.WebsiteContent)
	}

	return fmt.Sprintf(`# Interview Preparation Report - %s
*AI-generated report unavailable - basic analysis provided*

## Summary
Based on analysis of %d emails and %d research sources for %s.

## Email Analysis
- Total communications: %d
- Interview-related: %d
- Key contacts: %d

## Research Findings
- Search results analyzed: %d
- Website pages reviewed: %d

## Recommendations
1. Review the email communications for process details
2. Research the key contacts identified in your communications
3. Study the recent news and developments found in web research
4. Prepare specific examples that align with company values discovered
`,
		strings.ToUpper(company),
		insight.TotalEmails, searchCount, company,
		insight.TotalEmails, len(insight.InterviewRelated), len(insight.ImportantContacts),
		searchCount, pageCount)
}

// formatEmailInsights renders the email findings for the prompt, capped to
// keep prompt size bounded.
func formatEmailInsights(insight *types.EmailInsight) string {
	if insight == nil || insight.TotalEmails == 0 {
		return "No email communications found with this company."
	}

	var lines []string
	if len(insight.InterviewRelated) > 0 {
		lines = append(lines, "**Interview-Related Communications:**")
		for _, e := range capEmails(insight.InterviewRelated, 3) {
			lines = append(lines, fmt.Sprintf("- Subject: '%s' - %s...", e.Subject, clip(e.Content, 150)))
		}
	}
	if len(insight.ImportantContacts) > 0 {
		lines = append(lines, "", "**Key Company Contacts:**")
		limit := min(len(insight.ImportantContacts), 3)
		for _, contact := range insight.ImportantContacts[:limit] {
			lines = append(lines, fmt.Sprintf("- %s: Last contact about '%s'", contact.Name, contact.Subject))
		}
	}
	if len(insight.KeyInsights) > 0 {
		lines = append(lines, "", "**Communication Patterns:**")
		limit := min(len(insight.KeyInsights), 3)
		for _, k := range insight.KeyInsights[:limit] {
			lines = append(lines, "- "+k)
		}
	}

	if len(lines) == 0 {
		return "Limited email communication data available."
	}
	return strings.Join(lines, "\n")
}

// formatWebResearch renders the web findings for the prompt.
func formatWebResearch(research *types.WebResearch) string {
	if research == nil {
		return "Limited company research data available."
	}

	var lines []string
	if len(research.SearchResults) > 0 {
		lines = append(lines, fmt.Sprintf("**Recent News & Information (%d sources):**", len(research.SearchResults)))
		limit := min(len(research.SearchResults), 5)
		for _, r := range research.SearchResults[:limit] {
			lines = append(lines, fmt.Sprintf("- %s: %s...", r.Title, clip(r.Snippet, 100)))
		}
	}
	if len(research.WebsiteContent) > 0 {
		lines = append(lines, "", fmt.Sprintf("**Company Website Analysis (%d pages):**", len(research.WebsiteContent)))
		for _, page := range sortedKeys(research.WebsiteContent) {
			lines = append(lines, fmt.Sprintf("- %s page: %s...", titleWord(page), clip(research.WebsiteContent[page], 150)))
		}
	}
	if research.StructuredInfo.Mission != "" {
		lines = append(lines, "", "**Mission Statement:**", "- "+clip(research.StructuredInfo.Mission, 200))
	}
	if len(research.StructuredInfo.RecentNews) > 0 {
		lines = append(lines, "", "**Key Recent Developments:**")
		limit := min(len(research.StructuredInfo.RecentNews), 3)
		for _, dev := range research.StructuredInfo.RecentNews[:limit] {
			lines = append(lines, "- "+clip(dev, 100)+"...")
		}
	}

	if len(lines) == 0 {
		return "Limited company research data available."
	}
	return strings.Join(lines, "\n")
}

// SaveToDocs writes the report to a new Google Doc through the gateway and
// returns the document metadata.
func (c *Coach) SaveToDocs(ctx context.Context, company, report, userID string) (*types.DocumentInfo, error) {
	if c.exec == nil {
		return nil, fmt.Errorf("document delivery is not configured")
	}

	title := fmt.Sprintf("Interview Prep Report - %s - %s",
		strings.ToUpper(company), time.Now().Format("2006-01-02 15:04"))

	payload, err := c.exec.Execute(ctx, "act:create_doc", "GoogleDocs.CreateDocumentFromText", map[string]any{
		"title":        title,
		"text_content": report,
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	info := &types.DocumentInfo{Title: title}
	for _, key := range []string{"documentId", "document_id", "id"} {
		if id := payload.StringField(key); id != "" {
			info.DocumentID = id
			info.URL = fmt.Sprintf("https://docs.google.com/document/d/%s/edit", id)
			break
		}
	}
	if info.URL == "" {
		if text := payload.Text(); strings.Contains(text, "docs.google.com") {
			info.URL = text
		}
	}
	return info, nil
}

// SaveLocal writes the report to outDir and returns the file path. The
// filename encodes the company and a timestamp so repeated runs never
// clobber each other.
func SaveLocal(company, report, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	safe := strings.ReplaceAll(company, ".", "_")
	name := fmt.Sprintf("%s_prep_%s.md", safe, time.Now().Format("20060102_150405"))
	path := filepath.Join(outDir, name)

	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func capEmails(emails []types.CompanyEmail, n int) []types.CompanyEmail {
	if len(emails) > n {
		return emails[:n]
	}
	return emails
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
