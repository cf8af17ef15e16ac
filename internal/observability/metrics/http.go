package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal       *prometheus.CounterVec
	webhookEventsTotal *prometheus.CounterVec
	trendingTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listing",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "listing",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "api",
			Name:      "uploads_total",
			Help:      "Total product uploads by outcome.",
		},
		[]string{"service", "status"},
	)
	webhookEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "api",
			Name:      "webhook_events_total",
			Help:      "Total inbound automation webhook events by type.",
		},
		[]string{"service", "event"},
	)
	trendingTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "api",
			Name:      "trending_requests_total",
			Help:      "Total trending-keyword requests.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		webhookEventsTotal,
		trendingTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		uploadsTotal:       uploadsTotal,
		webhookEventsTotal: webhookEventsTotal,
		trendingTotal:      trendingTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case path == "/v1/products/batch-enrich":
		return path
	case strings.HasPrefix(path, "/v1/products/"):
		return "/v1/products/{product_id}"
	case strings.HasPrefix(path, "/files/"):
		return "/files/{key}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordUpload(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordWebhookEvent(service, event string) {
	m.webhookEventsTotal.WithLabelValues(service, event).Inc()
}

func (m *HTTPServerMetrics) RecordTrendingRequest(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.trendingTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
