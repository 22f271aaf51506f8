package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prep-coach/internal/events"
	"github.com/jonathan/prep-coach/internal/gateway"
	"github.com/jonathan/prep-coach/internal/llm"
	"github.com/jonathan/prep-coach/internal/types"
)

type fakeLLM struct {
	report    string
	err       error
	gotPrompt string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.gotPrompt = prompt
	return f.report, f.err
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Close() error { return nil }

type clientFunc func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error)

func (f clientFunc) ExecuteTool(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
	return f(ctx, toolName, input, userID)
}

func sampleInsight() *types.EmailInsight {
	return &types.EmailInsight{
		TotalEmails: 4,
		InterviewRelated: []types.CompanyEmail{
			{Subject: "Onsite schedule", Content: "Your onsite covers system design and a culture chat."},
		},
		KeyInsights: []string{"Interview process details in: Onsite schedule"},
		ImportantContacts: []types.Contact{
			{Email: "jane@acme.com", Name: "Jane", Subject: "Onsite schedule"},
		},
	}
}

func sampleResearch() *types.WebResearch {
	return &types.WebResearch{
		CompanyDomain: "acme.com",
		CompanyName:   "Acme",
		SearchResults: []types.SearchResult{
			{Title: "About Acme", Link: "https://acme.com/about", Snippet: "Acme builds anvils."},
		},
		WebsiteContent: map[string]string{
			"about": "Acme builds anvils for discerning coyotes.",
		},
		StructuredInfo: types.CompanyInfo{Mission: "Anvils for everyone."},
	}
}

func TestCreateReport_PromptCarriesResearchData(t *testing.T) {
	client := &fakeLLM{report: "# Prep Report"}
	coach := New(client, nil, events.NewLogger(io.Discard))

	got := coach.CreateReport(context.Background(), "acme", sampleInsight(), sampleResearch())

	assert.Equal(t, "# Prep Report", got)
	assert.Contains(t, client.gotPrompt, "ACME")
	assert.Contains(t, client.gotPrompt, "Total emails from company: 4")
	assert.Contains(t, client.gotPrompt, "Onsite schedule")
	assert.Contains(t, client.gotPrompt, "About Acme")
	assert.Contains(t, client.gotPrompt, "Anvils for everyone.")
}

func TestCreateReport_GenerationFailureFallsBack(t *testing.T) {
	client := &fakeLLM{err: errors.New("model unavailable")}
	coach := New(client, nil, events.NewLogger(io.Discard))

	got := coach.CreateReport(context.Background(), "acme", sampleInsight(), sampleResearch())

	assert.Contains(t, got, "Interview Preparation Report - ACME")
	assert.Contains(t, got, "basic analysis provided")
	assert.Contains(t, got, "Total communications: 4")
}

func TestFallbackReport_NilResearch(t *testing.T) {
	got := FallbackReport("acme", sampleInsight(), nil)
	assert.Contains(t, got, "Search results analyzed: 0")
	assert.Contains(t, got, "Website pages reviewed: 0")
}

func TestFormatEmailInsights_NoEmails(t *testing.T) {
	got := formatEmailInsights(&types.EmailInsight{})
	assert.Equal(t, "No email communications found with this company.", got)
}

func TestFormatWebResearch_PagesSortedByKey(t *testing.T) {
	research := &types.WebResearch{
		WebsiteContent: map[string]string{
			"team":  "The team",
			"about": "About us",
		},
	}
	got := formatWebResearch(research)
	aboutIdx := strings.Index(got, "About page")
	teamIdx := strings.Index(got, "Team page")
	require.GreaterOrEqual(t, aboutIdx, 0)
	require.GreaterOrEqual(t, teamIdx, 0)
	assert.Less(t, aboutIdx, teamIdx)
}

func TestSaveToDocs_ExtractsDocumentID(t *testing.T) {
	exec := gateway.NewExecutor(clientFunc(func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
		assert.Equal(t, "GoogleDocs.CreateDocumentFromText", toolName)
		assert.Contains(t, input["title"], "Interview Prep Report - ACME")
		return map[string]any{"documentId": "doc-123"}, nil
	}), events.NewLogger(io.Discard))
	coach := New(&fakeLLM{}, exec, events.NewLogger(io.Discard))

	info, err := coach.SaveToDocs(context.Background(), "acme", "report body", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-123", info.DocumentID)
	assert.Equal(t, "https://docs.google.com/document/d/doc-123/edit", info.URL)
}

func TestSaveToDocs_SnakeCaseIDFallback(t *testing.T) {
	exec := gateway.NewExecutor(clientFunc(func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
		return map[string]any{"document_id": "doc-456"}, nil
	}), events.NewLogger(io.Discard))
	coach := New(&fakeLLM{}, exec, events.NewLogger(io.Discard))

	info, err := coach.SaveToDocs(context.Background(), "acme", "report", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-456", info.DocumentID)
}

func TestSaveToDocs_GatewayErrorPropagates(t *testing.T) {
	exec := gateway.NewExecutor(clientFunc(func(ctx context.Context, toolName string, input map[string]any, userID string) (any, error) {
		return nil, errors.New("docs backend down")
	}), events.NewLogger(io.Discard))
	coach := New(&fakeLLM{}, exec, events.NewLogger(io.Discard))

	_, err := coach.SaveToDocs(context.Background(), "acme", "report", "user-1")
	assert.Error(t, err)
}

func TestSaveToDocs_NotConfigured(t *testing.T) {
	coach := New(&fakeLLM{}, nil, events.NewLogger(io.Discard))
	_, err := coach.SaveToDocs(context.Background(), "acme", "report", "user-1")
	assert.Error(t, err)
}

func TestSaveLocal_WritesReportFile(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveLocal("acme.com", "# Report body", dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "acme_com_prep_"), base)
	assert.True(t, strings.HasSuffix(base, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report body", string(data))
}
