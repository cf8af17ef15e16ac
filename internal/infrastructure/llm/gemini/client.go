package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Options struct {
	BaseURL           string
	APIKey            string
	Model             string
	HTTPClient        *http.Client
	RequestsPerMinute int
	Executor          *resilience.Executor
}

// Client issues generateContent calls against the Gemini REST API. A shared
// rate limiter provides backpressure against provider limits.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		model:      model,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		executor:   opts.Executor,
	}
}

// Model reports the generation model id recorded on completed products.
func (c *Client) Model() string {
	return c.model
}

// generateInto runs one prompt and feeds the raw response text into decode.
// The whole attempt, including decoding, sits inside the resilience executor
// so a schema violation triggers a fresh generation.
func (c *Client) generateInto(ctx context.Context, operation string, parts []part, decode func(string) error) error {
	call := func(ctx context.Context) error {
		raw, err := c.generate(ctx, parts)
		if err != nil {
			return err
		}
		return decode(raw)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature: 0.4,
		},
	}

	var response generateResponse
	path := fmt.Sprintf("/models/%s:generateContent", c.model)
	if err := c.postJSON(ctx, path, reqBody, &response); err != nil {
		return "", err
	}

	text := response.text()
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrSchemaViolation, "generate", fmt.Errorf("empty candidate text"))
	}
	return text, nil
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	var b strings.Builder
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		break
	}
	return b.String()
}

func decodeStageJSON(raw string, out any) error {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return fmt.Errorf("parse stage json: %w", err)
	}
	return nil
}
