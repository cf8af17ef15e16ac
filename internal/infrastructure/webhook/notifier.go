package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

// envelope is the fixed wire shape for outbound notifications.
type envelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client notifies the external workflow-automation system about pipeline
// transitions and pulls its trending-keyword feed. Notifications are
// fire-and-forget: callers log delivery errors, they never fail the pipeline.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: httpClient,
	}
}

// Enabled reports whether a destination is configured. Without one the
// pipeline runs normally and notifications are skipped.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Notify posts one event envelope. The response body is discarded; only the
// status class matters.
func (c *Client) Notify(ctx context.Context, event string, data any) error {
	if !c.Enabled() {
		slog.Debug("webhook_skipped", "event", event)
		return nil
	}

	body, err := json.Marshal(envelope{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return domain.WrapError(domain.ErrWebhookDelivery, "notify", fmt.Errorf("marshal envelope: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return domain.WrapError(domain.ErrWebhookDelivery, "notify", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrWebhookDelivery, "notify", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))

	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrWebhookDelivery, "notify",
			fmt.Errorf("event %s status %s", event, resp.Status))
	}
	return nil
}

// FetchTrending pulls the automation system's trending-keyword feed for a
// category. Entries come back tagged with the automation source.
func (c *Client) FetchTrending(ctx context.Context, category string) ([]domain.KeywordStat, error) {
	if !c.Enabled() {
		return nil, nil
	}

	endpoint := c.baseURL + "/trending"
	if category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrWebhookDelivery, "fetch trending", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrWebhookDelivery, "fetch trending", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return nil, domain.WrapError(domain.ErrWebhookDelivery, "fetch trending",
			fmt.Errorf("status %s", resp.Status))
	}

	var payload struct {
		Keywords []domain.KeywordStat `json:"keywords"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.WrapError(domain.ErrWebhookDelivery, "fetch trending", fmt.Errorf("decode feed: %w", err))
	}
	for i := range payload.Keywords {
		if payload.Keywords[i].Source == "" {
			payload.Keywords[i].Source = domain.KeywordSourceAutomation
		}
	}
	return payload.Keywords, nil
}
