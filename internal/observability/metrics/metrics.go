// Package metrics exposes prometheus instruments for the HTTP surface and
// the billing actions that operators alert on.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments request volume and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "branchdesk_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "branchdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Metrics exposes domain-level instruments.
type Metrics struct {
	upgradeQuotes    prometheus.Counter
	invoiceEvents    *prometheus.CounterVec
	accessResolution *prometheus.CounterVec
	rateLimitDenied  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		upgradeQuotes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "branchdesk_upgrade_quotes_total",
			Help: "Upgrade price quotes computed.",
		}),
		invoiceEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "branchdesk_invoice_events_total",
			Help: "Invoice state transitions by target status.",
		}, []string{"status"}),
		accessResolution: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "branchdesk_access_resolutions_total",
			Help: "Access scope resolutions by resolved kind.",
		}, []string{"kind"}),
		rateLimitDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "branchdesk_rate_limit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) RecordUpgradeQuote() {
	if m == nil {
		return
	}
	m.upgradeQuotes.Inc()
}

func (m *Metrics) RecordInvoiceEvent(status string) {
	if m == nil {
		return
	}
	m.invoiceEvents.WithLabelValues(strings.TrimSpace(status)).Inc()
}

func (m *Metrics) RecordAccessResolution(kind string) {
	if m == nil {
		return
	}
	m.accessResolution.WithLabelValues(strings.TrimSpace(kind)).Inc()
}

func (m *Metrics) RecordRateLimitDenied(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(strings.TrimSpace(endpoint)).Inc()
}

// GinMiddleware records per-request metrics after the handler chain runs.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
