package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAutomationWebhookRejectsBadToken(t *testing.T) {
	fixture := newRouterFixture("secret")

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/automation",
		strings.NewReader(`{"event":"trending-keywords-updated","data":{}}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()

	fixture.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAutomationWebhookRequiresToken(t *testing.T) {
	fixture := newRouterFixture("secret")

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/automation",
		strings.NewReader(`{"event":"x","data":{}}`))
	rec := httptest.NewRecorder()

	fixture.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAutomationWebhookUpdatesTrendCache(t *testing.T) {
	fixture := newRouterFixture("secret")

	payload := `{
		"event": "trending-keywords-updated",
		"timestamp": "2026-08-31T08:00:00Z",
		"data": {"category": "rau-cu", "keywords": [{"keyword": "rau sạch", "count": 9}]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/automation", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()

	fixture.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stats, ok := fixture.cache.Get("rau-cu")
	if !ok || len(stats) != 1 {
		t.Fatalf("cache not updated: %v", fixture.cache.entries)
	}
	if stats[0].Keyword != "rau sạch" || stats[0].Source == "" {
		t.Fatalf("unexpected cached entry: %+v", stats[0])
	}
}

func TestAutomationWebhookAcknowledgesUnknownEvent(t *testing.T) {
	fixture := newRouterFixture("")

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/automation",
		strings.NewReader(`{"event":"order-created","data":{"orderId":"o-1"}}`))
	rec := httptest.NewRecorder()

	fixture.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown events are acknowledged, got %d", rec.Code)
	}
	if len(fixture.cache.entries) != 0 {
		t.Fatalf("unknown event must not touch the cache: %v", fixture.cache.entries)
	}
}

func TestAutomationWebhookRequiresEventName(t *testing.T) {
	fixture := newRouterFixture("")

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/automation",
		strings.NewReader(`{"data":{}}`))
	rec := httptest.NewRecorder()

	fixture.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
