// Package types defines the shared data model passed between the research,
// email, and report stages of a prep run.
package types

// SearchResult is one web search hit surfaced to the user for reporting.
// Fields may be empty; discovery substitutes a "Mapped" title when only
// site-map links were found.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// CompanyInfo is summary information derived once per research run.
type CompanyInfo struct {
	Mission    string   `json:"mission"`
	RecentNews []string `json:"recent_news"`
}

// WebResearch is the aggregate output of a company research run. It is
// constructed once by the researcher and never mutated afterward.
type WebResearch struct {
	CompanyDomain  string            `json:"company_domain"`
	CompanyName    string            `json:"company_name"`
	SearchResults  []SearchResult    `json:"search_results"`
	WebsiteContent map[string]string `json:"website_content"`
	StructuredInfo CompanyInfo       `json:"structured_info"`
}

// CompanyEmail is one email thread from the target company.
type CompanyEmail struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Contact is a person the candidate has corresponded with.
type Contact struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	LastContact string `json:"last_contact"`
	Subject     string `json:"subject"`
}

// EmailInsight summarizes the correspondence with the target company.
type EmailInsight struct {
	TotalEmails       int            `json:"total_emails"`
	InterviewRelated  []CompanyEmail `json:"interview_related"`
	KeyInsights       []string       `json:"key_insights"`
	ImportantContacts []Contact      `json:"important_contacts"`
}

// DocumentInfo describes a published prep report document.
type DocumentInfo struct {
	Title      string `json:"title"`
	DocumentID string `json:"document_id,omitempty"`
	URL        string `json:"url,omitempty"`
}
