package email

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/types"
)

type clientFunc func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error)

func (f clientFunc) ExecuteTool(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
	return f(ctx, toolName, input, userID)
}

func newAnalyzer(fn clientFunc) *Analyzer {
	logger := events.NewLogger(io.Discard)
	return New(gateway.NewExecutor(fn, logger), logger)
}

func gmailThread(id, from, subject, snippet string) map[string]any {
	return map[string]any{
		"id": id,
		"messages": []any{
			map[string]any{
				"snippet": snippet,
				"payload": map[string]any{
					"headers": []any{
						map[string]any{"name": "From", "value": from},
						map[string]any{"name": "Subject", "value": subject},
						map[string]any{"name": "Date", "value": "Mon, 24 Aug 2026 09:00:00 -0700"},
					},
				},
			},
		},
	}
}

func gmailClient(threads map[string]map[string]any, order []string) clientFunc {
	var mu sync.Mutex
	return func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		switch toolName {
		case "Gmail.SearchThreads":
			list := make([]any, 0, len(order))
			for _, id := range order {
				list = append(list, map[string]any{"id": id})
			}
			return map[string]any{"threads": list}, nil
		case "Gmail.GetThread":
			id, _ := input["thread_id"].(string)
			if th, ok := threads[id]; ok {
				return th, nil
			}
			return nil, errors.New("thread not found")
		}
		return nil, errors.New("unexpected tool " + toolName)
	}
}

func TestAnalyzeCompanyEmails_SearchFailureDegradesToEmpty(t *testing.T) {
	a := newAnalyzer(func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
		return nil, errors.New("gmail unavailable")
	})

	insight := a.AnalyzeCompanyEmails(context.Background(), "acme.com", "user-1")
	require.NotNil(t, insight)
	assert.Zero(t, insight.TotalEmails)
	assert.Empty(t, insight.InterviewRelated)
	assert.Empty(t, insight.KeyInsights)
	assert.Empty(t, insight.ImportantContacts)
}

func TestAnalyzeCompanyEmails_FullFlow(t *testing.T) {
	threads := map[string]map[string]any{
		"t1": gmailThread("t1", "Jane Doe <jane.doe@acme.com>", "Interview schedule", "Your technical interview covers the engineer role and our process"),
		"t2": gmailThread("t2", "noreply@acme.com", "Your receipt", "Thanks for your purchase"),
		"t3": gmailThread("t3", "bob@other.com", "Interview", "Should be dropped, wrong domain"),
	}
	a := newAnalyzer(gmailClient(threads, []string{"t1", "t2", "t3"}))

	insight := a.AnalyzeCompanyEmails(context.Background(), "acme.com", "user-1")

	assert.Equal(t, 2, insight.TotalEmails)
	require.Len(t, insight.InterviewRelated, 1)
	assert.Equal(t, "Interview schedule", insight.InterviewRelated[0].Subject)
	assert.Equal(t, "jane.doe@acme.com", insight.InterviewRelated[0].Sender)

	assert.Contains(t, insight.KeyInsights, "Engineering role discussed in: Interview schedule")
	assert.Contains(t, insight.KeyInsights, "Interview process details in: Interview schedule")

	require.Len(t, insight.ImportantContacts, 2)
	assert.Equal(t, "jane.doe@acme.com", insight.ImportantContacts[0].Email)
	assert.Equal(t, "Jane Doe", insight.ImportantContacts[0].Name)
}

func TestAnalyzeCompanyEmails_ThreadFetchErrorSkipsThread(t *testing.T) {
	threads := map[string]map[string]any{
		"good": gmailThread("good", "recruiter@acme.com", "Phone call", "quick chat about the position"),
	}
	a := newAnalyzer(gmailClient(threads, []string{"broken", "good"}))

	insight := a.AnalyzeCompanyEmails(context.Background(), "acme.com", "user-1")
	assert.Equal(t, 1, insight.TotalEmails)
}

func TestAnalyzeCompanyEmails_PreservesSearchOrder(t *testing.T) {
	threads := map[string]map[string]any{
		"t1": gmailThread("t1", "a@acme.com", "First", "interview"),
		"t2": gmailThread("t2", "b@acme.com", "Second", "interview"),
		"t3": gmailThread("t3", "c@acme.com", "Third", "interview"),
	}
	a := newAnalyzer(gmailClient(threads, []string{"t1", "t2", "t3"}))

	insight := a.AnalyzeCompanyEmails(context.Background(), "acme.com", "user-1")
	require.Len(t, insight.InterviewRelated, 3)
	assert.Equal(t, "First", insight.InterviewRelated[0].Subject)
	assert.Equal(t, "Second", insight.InterviewRelated[1].Subject)
	assert.Equal(t, "Third", insight.InterviewRelated[2].Subject)
}

func TestExtractContent_Base64PlainBody(t *testing.T) {
	body := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("plain text body"))
	thread := map[string]any{
		"messages": []any{
			map[string]any{
				"payload": map[string]any{
					"parts": []any{
						map[string]any{
							"mimeType": "text/plain",
							"body":     map[string]any{"data": body},
						},
					},
				},
			},
		},
	}
	assert.Equal(t, "plain text body", extractContent(thread))
}

func TestExtractContent_HTMLBodyStripped(t *testing.T) {
	html := "<html><body><style>p{color:red}</style><p>Hello <b>world</b></p></body></html>"
	thread := map[string]any{
		"messages": []any{
			map[string]any{
				"payload": map[string]any{
					"parts": []any{
						map[string]any{
							"mimeType": "text/html",
							"body":     map[string]any{"data": html},
						},
					},
				},
			},
		},
	}
	assert.Equal(t, "Hello world", extractContent(thread))
}

func TestExtractContent_LooseFieldFallback(t *testing.T) {
	thread := map[string]any{"body": "from a loose field"}
	assert.Equal(t, "from a loose field", extractContent(thread))
}

func TestExtractDate_InternalDateWins(t *testing.T) {
	thread := map[string]any{
		"messages": []any{
			map[string]any{
				"internalDate": "1724500000000",
				"payload": map[string]any{
					"headers": []any{
						map[string]any{"name": "Date", "value": "should lose"},
					},
				},
			},
		},
	}
	assert.Equal(t, "1724500000000", extractDate(thread))
}

func TestExtractContacts_DedupesAndCaps(t *testing.T) {
	emails := make([]types.CompanyEmail, 0, 15)
	for i := 0; i < 12; i++ {
		emails = append(emails, types.CompanyEmail{
			Sender:  string(rune('a'+i)) + "@acme.com",
			Subject: "Subject",
			Date:    "today",
		})
	}
	emails = append(emails, types.CompanyEmail{Sender: "a@acme.com", Subject: "Duplicate"})

	contacts := extractContacts(emails)
	assert.Len(t, contacts, 10)
	assert.Equal(t, "a@acme.com", contacts[0].Email)
}

func TestFilterInterviewEmails_SubjectMatchCounts(t *testing.T) {
	emails := []types.CompanyEmail{
		{Subject: "Onsite confirmed", Content: "see you then"},
		{Subject: "Newsletter", Content: "our latest widgets"},
	}
	got := filterInterviewEmails(emails)
	require.Len(t, got, 1)
	assert.Equal(t, "Onsite confirmed", got[0].Subject)
}
