package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
	"github.com/chotuoi/listing-pipeline/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	uploader ports.ProductUploader
	reader   ports.ProductReader
	batch    ports.BatchTrigger
	trending ports.TrendingService
	cache    ports.TrendCache
	metrics  *metrics.HTTPServerMetrics

	webhookKey     string
	filesDir       string
	maxUploadBytes int64
}

type RouterOptions struct {
	Uploader ports.ProductUploader
	Reader   ports.ProductReader
	Batch    ports.BatchTrigger
	Trending ports.TrendingService
	Cache    ports.TrendCache
	Metrics  *metrics.HTTPServerMetrics

	WebhookKey     string
	FilesDir       string
	MaxUploadBytes int64
}

func NewRouter(opts RouterOptions) *Router {
	maxUploadBytes := opts.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Router{
		uploader:       opts.Uploader,
		reader:         opts.Reader,
		batch:          opts.Batch,
		trending:       opts.Trending,
		cache:          opts.Cache,
		metrics:        opts.Metrics,
		webhookKey:     opts.WebhookKey,
		filesDir:       opts.FilesDir,
		maxUploadBytes: maxUploadBytes,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)

	r.Get("/healthz", rt.healthz)
	r.Handle("/metrics", rt.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/products", rt.uploadProduct)
		r.Get("/products/{productID}", rt.getProduct)
		r.Post("/products/batch-enrich", rt.batchEnrich)
		r.Get("/keywords/trending", rt.trendingKeywords)
		r.Post("/webhooks/automation", rt.automationWebhook)
	})

	if rt.filesDir != "" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(rt.filesDir)))
		r.Get("/files/*", fileServer.ServeHTTP)
	}

	return rt.metrics.Middleware(serviceName, r)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadProduct(w http.ResponseWriter, r *http.Request) {
	// The request body ceiling leaves headroom over the per-image limit for
	// multipart framing and text fields.
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+1<<20)

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'image' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read image payload"})
		return
	}

	product, report, err := rt.uploader.Upload(r.Context(), ports.UploadInput{
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Data:        data,
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	})
	rt.metrics.RecordUpload(serviceName, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"productId":       product.ID,
		"status":          string(product.Status),
		"imageUrl":        "/files/" + product.Images.Original.Path,
		"qualityAnalysis": report,
	})
}

func (rt *Router) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product id is required"})
		return
	}

	product, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (rt *Router) batchEnrich(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	results, err := rt.batch.TriggerBatch(r.Context(), req.ProductIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"results": results})
}

func (rt *Router) trendingKeywords(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	stats, err := rt.trending.TrendingKeywords(r.Context(), category, limit)
	rt.metrics.RecordTrendingRequest(serviceName, err)
	if err != nil {
		writeError(w, err)
		return
	}
	if stats == nil {
		stats = []domain.KeywordStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"keywords": stats,
	})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
