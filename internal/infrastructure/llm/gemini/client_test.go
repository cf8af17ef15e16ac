package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/resilience"
)

func candidateResponse(t *testing.T, text string) []byte {
	t.Helper()
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return body
}

// newStageServer serves one canned candidate text per request, in order,
// repeating the last one once the list is exhausted.
func newStageServer(t *testing.T, texts ...string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		idx := int(n) - 1
		if idx >= len(texts) {
			idx = len(texts) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(candidateResponse(t, texts[idx]))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     1.0,
		BreakerEnabled:      false,
	})
}

func TestAnalyzeParsesNoisyJSON(t *testing.T) {
	text := "Here is the analysis you asked for:\n```json\n" +
		`{"category":"trai-cay","subcategory":"xoai","features":["ripe","golden"],` +
		`"quality":{"score":8.5,"freshness":"very fresh","visualAppeal":8,"notes":"good light"},` +
		`"targetAudience":["families"],"sellingPoints":["sweet"],"confidence":0.92}` +
		"\n```\nLet me know if you need more."
	server, calls := newStageServer(t, text)

	client := New(Options{BaseURL: server.URL, APIKey: "k", Executor: newTestExecutor()})
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), "aW1n", "trai-cay")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Category != "trai-cay" || analysis.Subcategory != "xoai" {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if analysis.Quality.Score != 8.5 || analysis.Confidence != 0.92 {
		t.Fatalf("unexpected scores: %+v", analysis)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", calls.Load())
	}
}

func TestAnalyzeAcceptsAdvertisedResponseShape(t *testing.T) {
	prompt := buildAnalysisPrompt("trai-cay")
	if !strings.Contains(prompt, `"targetAudience": ["string"]`) {
		t.Fatalf("analysis prompt must request an audience array, got:\n%s", prompt)
	}

	// A response that follows the prompt's shape to the letter must decode on
	// the first attempt.
	text := `{
  "category": "trai-cay",
  "subcategory": "xoai",
  "features": ["ripe"],
  "quality": {"score": 8.0, "freshness": "fresh", "visualAppeal": 7.5, "notes": "ok"},
  "targetAudience": ["families", "health-conscious shoppers"],
  "sellingPoints": ["sweet"],
  "confidence": 0.9
}`
	server, calls := newStageServer(t, text)

	client := New(Options{BaseURL: server.URL, APIKey: "k", Executor: newTestExecutor()})
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), "aW1n", "trai-cay")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.TargetAudience) != 2 || analysis.TargetAudience[0] != "families" {
		t.Fatalf("unexpected audience: %v", analysis.TargetAudience)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single request, got %d", calls.Load())
	}
}

func TestAnalyzeRegeneratesOnSchemaViolation(t *testing.T) {
	invalid := `{"category":"","confidence":0.5}`
	valid := `{"category":"rau-cu","quality":{"score":7},"confidence":0.8}`
	server, calls := newStageServer(t, invalid, valid)

	client := New(Options{BaseURL: server.URL, APIKey: "k", Executor: newTestExecutor()})
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), "aW1n", "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Category != "rau-cu" {
		t.Fatalf("unexpected category %q", analysis.Category)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected regeneration, got %d requests", calls.Load())
	}
}

func TestAnalyzeNoJSONFailsWithoutRetry(t *testing.T) {
	server, calls := newStageServer(t, "I cannot see any product in this image.")

	client := New(Options{BaseURL: server.URL, APIKey: "k", Executor: newTestExecutor()})
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), "aW1n", "")
	if err == nil {
		t.Fatal("expected error for prose-only response")
	}
	if !domain.IsKind(err, domain.ErrUpstreamAI) {
		t.Fatalf("expected upstream AI kind, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("unparsable output must not retry, got %d requests", calls.Load())
	}
}

func TestGenerateContentRequiresTitles(t *testing.T) {
	server, _ := newStageServer(t, `{"titles":[],"description":"mo ta"}`)

	client := New(Options{BaseURL: server.URL, APIKey: "k"})
	generator := NewGenerator(client)

	_, err := generator.Generate(context.Background(), domain.ImageAnalysis{Category: "rau-cu"}, domain.GenerationOptions{})
	if err == nil {
		t.Fatal("expected schema violation for empty titles")
	}
	if !domain.IsKind(err, domain.ErrUpstreamAI) || !domain.IsKind(err, domain.ErrSchemaViolation) {
		t.Fatalf("unexpected error kinds: %v", err)
	}
}

func TestSuggestDefaultsCurrency(t *testing.T) {
	server, _ := newStageServer(t,
		`{"suggestedRange":{"min":25000,"max":40000},"strategy":"seasonal","marketPosition":"mid-range"}`)

	client := New(Options{BaseURL: server.URL, APIKey: "k"})
	suggester := NewPriceSuggester(client)

	suggestion, err := suggester.Suggest(context.Background(), domain.ImageAnalysis{Category: "trai-cay"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if suggestion.SuggestedRange.Currency != "VND" {
		t.Fatalf("expected VND default, got %q", suggestion.SuggestedRange.Currency)
	}
	if suggestion.SuggestedRange.Min != 25000 || suggestion.SuggestedRange.Max != 40000 {
		t.Fatalf("unexpected range: %+v", suggestion.SuggestedRange)
	}
}

func TestSuggestRejectsInvertedRange(t *testing.T) {
	server, _ := newStageServer(t, `{"suggestedRange":{"min":50000,"max":10000,"currency":"VND"}}`)

	client := New(Options{BaseURL: server.URL, APIKey: "k"})
	suggester := NewPriceSuggester(client)

	if _, err := suggester.Suggest(context.Background(), domain.ImageAnalysis{}); err == nil {
		t.Fatal("expected schema violation for max < min")
	}
}

func TestSuggestTrendingTruncates(t *testing.T) {
	server, _ := newStageServer(t, `{"keywords":["a","b","c","d","e"]}`)

	client := New(Options{BaseURL: server.URL, APIKey: "k"})
	suggester := NewKeywordSuggester(client)

	keywords, err := suggester.SuggestTrending(context.Background(), "rau-cu", 3)
	if err != nil {
		t.Fatalf("suggest trending: %v", err)
	}
	if len(keywords) != 3 {
		t.Fatalf("expected 3 keywords, got %v", keywords)
	}
}

func TestServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL, APIKey: "k", Executor: newTestExecutor()})
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), "aW1n", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind for 503, got %v", err)
	}
}
