package httpadapter

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

const eventTrendingKeywordsUpdated = "trending-keywords-updated"

type inboundEvent struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// automationWebhook receives callbacks from the workflow-automation system.
// Known events update local state; unknown ones are acknowledged and logged so
// the sender never retries a superseded event type forever.
func (rt *Router) automationWebhook(w http.ResponseWriter, r *http.Request) {
	if err := rt.authorizeWebhook(r); err != nil {
		writeError(w, err)
		return
	}

	var event inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(event.Event) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "event is required"})
		return
	}

	rt.metrics.RecordWebhookEvent(serviceName, event.Event)

	switch event.Event {
	case eventTrendingKeywordsUpdated:
		if err := rt.applyTrendingUpdate(event.Data); err != nil {
			writeError(w, err)
			return
		}
	default:
		slog.Info("webhook_event_ignored", "event", event.Event)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (rt *Router) authorizeWebhook(r *http.Request) error {
	if rt.webhookKey == "" {
		return nil
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(rt.webhookKey)) != 1 {
		return domain.WrapError(domain.ErrUnauthorized, "webhook auth", errors.New("bearer token mismatch"))
	}
	return nil
}

func (rt *Router) applyTrendingUpdate(raw json.RawMessage) error {
	var payload struct {
		Category string               `json:"category"`
		Keywords []domain.KeywordStat `json:"keywords"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "trending update", err)
	}
	if len(payload.Keywords) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "trending update", errors.New("empty keyword list"))
	}
	for i := range payload.Keywords {
		if payload.Keywords[i].Source == "" {
			payload.Keywords[i].Source = domain.KeywordSourceAutomation
		}
	}
	rt.cache.Set(payload.Category, payload.Keywords)
	return nil
}
