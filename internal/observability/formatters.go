// Package observability provides formatted output utilities for the CLI's
// human-readable summaries.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/prep-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEmailInsight outputs a summary of the email analysis.
func (p *Printer) PrintEmailInsight(insight *types.EmailInsight) {
	if insight == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total emails:       %d\n", insight.TotalEmails))
	sb.WriteString(fmt.Sprintf("Interview-related:  %d\n", len(insight.InterviewRelated)))
	sb.WriteString(fmt.Sprintf("Contacts found:     %d\n", len(insight.ImportantContacts)))

	if len(insight.ImportantContacts) > 0 {
		sb.WriteString("\nKey Contacts:\n")
		count := min(len(insight.ImportantContacts), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := insight.ImportantContacts[i]
			sb.WriteString(fmt.Sprintf("  • %s <%s>\n", c.Name, c.Email))
		}
		if len(insight.ImportantContacts) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(insight.ImportantContacts)-maxItemsToShow))
		}
	}

	if len(insight.KeyInsights) > 0 {
		sb.WriteString("\nSignals:\n")
		count := min(len(insight.KeyInsights), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", insight.KeyInsights[i]))
		}
		if len(insight.KeyInsights) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(insight.KeyInsights)-3))
		}
	}

	p.printBox("EMAIL ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWebResearch outputs a summary of the company research.
func (p *Printer) PrintWebResearch(research *types.WebResearch) {
	if research == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", research.CompanyName))
	sb.WriteString(fmt.Sprintf("Domain:   %s\n", research.CompanyDomain))

	if len(research.WebsiteContent) > 0 {
		sb.WriteString(fmt.Sprintf("\nPages captured (%d):\n", len(research.WebsiteContent)))
		shown := 0
		for page := range research.WebsiteContent {
			if shown == maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(research.WebsiteContent)-maxItemsToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", page))
			shown++
		}
	}

	if len(research.SearchResults) > 0 {
		sb.WriteString(fmt.Sprintf("\nSearch results (%d):\n", len(research.SearchResults)))
		count := min(len(research.SearchResults), 3)
		for i := 0; i < count; i++ {
			r := research.SearchResults[i]
			sb.WriteString(fmt.Sprintf("  • %s\n", r.Title))
		}
	}

	if research.StructuredInfo.Mission != "" {
		sb.WriteString("\nMission excerpt:\n")
		sb.WriteString("  " + research.StructuredInfo.Mission + "\n")
	}

	p.printBox("COMPANY RESEARCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocumentInfo outputs where the report was delivered.
func (p *Printer) PrintDocumentInfo(info *types.DocumentInfo) {
	if info == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", info.Title))
	if info.URL != "" {
		sb.WriteString(fmt.Sprintf("URL:   %s\n", info.URL))
	}

	p.printBox("GOOGLE DOC", strings.TrimSuffix(sb.String(), "\n"))
}
