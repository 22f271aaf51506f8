// Package email mines the user's Gmail for contact with a target company and
// distills interview-relevant signal from it. Every gateway failure degrades
// to an emptier EmailInsight; this package never fails a prep run.
package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/types"
)

const (
	defaultMaxThreads = 20
	threadFetchLimit  = 4
	maxContacts       = 10
)

// interviewKeywords mark an email as relevant to a hiring process. Matching
// is substring-based over subject plus content, lowercased.
var interviewKeywords = []string{
	"interview", "hiring", "position", "role", "candidate",
	"assessment", "onsite", "technical", "culture", "team",
	"offer", "application", "resume", "cv", "background",
	"schedule", "meeting", "call", "discussion", "chat",
	"recruiter", "recruitment", "opportunity",
}

// Analyzer searches and analyzes company email threads through the gateway.
type Analyzer struct {
	exec   *gateway.Executor
	logger *events.Logger

	// MaxThreads bounds the Gmail search; zero means defaultMaxThreads.
	MaxThreads int
}

// New creates an Analyzer.
func New(exec *gateway.Executor, logger *events.Logger) *Analyzer {
	return &Analyzer{exec: exec, logger: logger}
}

// AnalyzeCompanyEmails finds mail from the company domain and extracts
// interview-related emails, key insights, and contacts. It always returns a
// usable insight; a failed search simply yields zero emails.
func (a *Analyzer) AnalyzeCompanyEmails(ctx context.Context, domain, userID string) *types.EmailInsight {
	emails := a.searchCompanyEmails(ctx, domain, userID)
	if len(emails) == 0 {
		return &types.EmailInsight{
			InterviewRelated:  []types.CompanyEmail{},
			KeyInsights:       []string{},
			ImportantContacts: []types.Contact{},
		}
	}

	interview := filterInterviewEmails(emails)
	return &types.EmailInsight{
		TotalEmails:       len(emails),
		InterviewRelated:  interview,
		KeyInsights:       extractKeyInsights(interview),
		ImportantContacts: extractContacts(emails),
	}
}

// searchCompanyEmails lists threads whose sender matches the domain, then
// fetches each thread's details. Thread fetches run concurrently but the
// result keeps search order so insights are stable across runs.
func (a *Analyzer) searchCompanyEmails(ctx context.Context, domain, userID string) []types.CompanyEmail {
	maxThreads := a.MaxThreads
	if maxThreads <= 0 {
		maxThreads = defaultMaxThreads
	}

	payload, err := a.exec.Execute(ctx, "act:search_gmail", "Gmail.SearchThreads", map[string]any{
		"sender":      "@" + domain,
		"max_results": maxThreads,
	}, userID)
	if err != nil {
		return nil
	}

	var ids []string
	for _, item := range payload.ListField("threads") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	results := make([]*types.CompanyEmail, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threadFetchLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			email := a.fetchThread(gctx, id, domain, userID)
			mu.Lock()
			results[i] = email
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	emails := make([]types.CompanyEmail, 0, len(ids))
	for _, e := range results {
		if e != nil {
			emails = append(emails, *e)
		}
	}
	return emails
}

// fetchThread pulls one thread and builds a CompanyEmail from it. Threads
// whose sender does not actually match the domain are dropped: the search
// tool's sender filter is treated as advisory.
func (a *Analyzer) fetchThread(ctx context.Context, threadID, domain, userID string) *types.CompanyEmail {
	payload, err := a.exec.Execute(ctx, "act:get_thread", "Gmail.GetThread", map[string]any{
		"thread_id": threadID,
	}, userID)
	if err != nil {
		return nil
	}

	thread := payload.Map()
	if thread == nil {
		return nil
	}

	sender := extractSender(thread)
	if sender == "" || !strings.Contains(strings.ToLower(sender), "@"+strings.ToLower(domain)) {
		return nil
	}

	return &types.CompanyEmail{
		ID:      threadID,
		Subject: extractSubject(thread),
		Sender:  sender,
		Date:    extractDate(thread),
		Content: extractContent(thread),
	}
}

// firstMessage returns the first message of a thread, or nil.
func firstMessage(thread map[string]any) map[string]any {
	messages, _ := thread["messages"].([]any)
	if len(messages) == 0 {
		return nil
	}
	m, _ := messages[0].(map[string]any)
	return m
}

// headerValue finds a header by case-insensitive name in a Gmail payload
// headers list.
func headerValue(payload map[string]any, name string) string {
	headers, _ := payload["headers"].([]any)
	for _, h := range headers {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if n, _ := hm["name"].(string); strings.EqualFold(n, name) {
			v, _ := hm["value"].(string)
			return v
		}
	}
	return ""
}

func messagePayload(msg map[string]any) map[string]any {
	p, _ := msg["payload"].(map[string]any)
	return p
}

var senderFields = []string{
	"sender", "from", "fromEmail", "sender_email", "from_email",
	"senderEmail", "fromAddress", "sender_address",
}

func extractSender(thread map[string]any) string {
	if msg := firstMessage(thread); msg != nil {
		if raw := headerValue(messagePayload(msg), "From"); raw != "" {
			if addr, err := mail.ParseAddress(raw); err == nil {
				return addr.Address
			}
			return raw
		}
		if s := firstStringField(msg, senderFields); s != "" {
			return s
		}
	}
	return firstStringField(thread, senderFields)
}

func extractSubject(thread map[string]any) string {
	fields := []string{"subject", "title", "Subject"}
	if msg := firstMessage(thread); msg != nil {
		if s := headerValue(messagePayload(msg), "Subject"); s != "" {
			return s
		}
		if s := firstStringField(msg, fields); s != "" {
			return s
		}
	}
	return firstStringField(thread, fields)
}

func extractDate(thread map[string]any) string {
	fields := []string{"date", "timestamp", "created_at", "Date"}
	if msg := firstMessage(thread); msg != nil {
		switch v := msg["internalDate"].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
		if d := headerValue(messagePayload(msg), "Date"); d != "" {
			return d
		}
		if d := firstStringField(msg, fields); d != "" {
			return d
		}
	}
	return firstStringField(thread, fields)
}

// extractContent pulls a content preview for keyword matching: the Gmail
// snippet when present, else the first text/plain body (base64url-decoded
// when it decodes), else a stripped text/html body, else loose fields.
func extractContent(thread map[string]any) string {
	fields := []string{"content", "body", "snippet", "text", "message"}

	if msg := firstMessage(thread); msg != nil {
		if s, _ := msg["snippet"].(string); s != "" {
			return s
		}
		payload := messagePayload(msg)
		if body := partBody(payload, "text/plain"); body != "" {
			return decodeBody(body)
		}
		if body := partBody(payload, "text/html"); body != "" {
			return htmlToText(decodeBody(body))
		}
		if s := firstStringField(msg, fields); s != "" {
			return s
		}
	}

	if s := firstStringField(thread, fields); s != "" {
		return s
	}
	s, _ := thread["snippet"].(string)
	return s
}

func partBody(payload map[string]any, mimeType string) string {
	if payload == nil {
		return ""
	}
	parts, _ := payload["parts"].([]any)
	for _, p := range parts {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if mt, _ := pm["mimeType"].(string); mt != mimeType {
			continue
		}
		body, _ := pm["body"].(map[string]any)
		if body == nil {
			continue
		}
		if data, _ := body["data"].(string); data != "" {
			return data
		}
	}
	return ""
}

// decodeBody tries Gmail's base64url encoding and falls back to the raw
// string when the data was already plain text.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return data
}

// htmlToText strips markup from an HTML email body.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}

func firstStringField(m map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := m[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// filterInterviewEmails keeps emails whose subject or content mentions any
// hiring-process keyword.
func filterInterviewEmails(emails []types.CompanyEmail) []types.CompanyEmail {
	relevant := make([]types.CompanyEmail, 0, len(emails))
	for _, e := range emails {
		haystack := strings.ToLower(e.Subject + " " + e.Content)
		for _, kw := range interviewKeywords {
			if strings.Contains(haystack, kw) {
				relevant = append(relevant, e)
				break
			}
		}
	}
	return relevant
}

// extractKeyInsights derives one-line observations from interview emails.
// Duplicates keep first-seen order.
func extractKeyInsights(emails []types.CompanyEmail) []string {
	seen := make(map[string]bool)
	insights := make([]string, 0, len(emails))
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			insights = append(insights, s)
		}
	}

	for _, e := range emails {
		content := strings.ToLower(e.Content)
		if strings.Contains(content, "engineer") {
			add("Engineering role discussed in: " + e.Subject)
		}
		if strings.Contains(content, "process") || strings.Contains(content, "steps") {
			add("Interview process details in: " + e.Subject)
		}
		if strings.Contains(content, "team") || strings.Contains(content, "culture") {
			add("Team/culture information in: " + e.Subject)
		}
		if strings.Contains(content, "experience") || strings.Contains(content, "skills") {
			add("Requirements/skills mentioned in: " + e.Subject)
		}
	}
	return insights
}

// extractContacts lists up to maxContacts unique senders with their most
// recent subject line.
func extractContacts(emails []types.CompanyEmail) []types.Contact {
	seen := make(map[string]bool)
	contacts := make([]types.Contact, 0, maxContacts)

	for _, e := range emails {
		if e.Sender == "" || !strings.Contains(e.Sender, "@") || seen[e.Sender] {
			continue
		}
		seen[e.Sender] = true

		subject := e.Subject
		if len(subject) > 100 {
			subject = subject[:100] + "..."
		}
		contacts = append(contacts, types.Contact{
			Email:       e.Sender,
			Name:        nameFromAddress(e.Sender),
			LastContact: e.Date,
			Subject:     subject,
		})
		if len(contacts) == maxContacts {
			break
		}
	}
	return contacts
}

// nameFromAddress guesses a display name from the local part of an address:
// "jane.doe@acme.com" -> "Jane Doe".
func nameFromAddress(addr string) string {
	at := strings.Index(addr, "@")
	if at < 0 {
		return addr
	}
	local := addr[:at]
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return titleWords(local)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
