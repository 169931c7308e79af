package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the request-level prometheus instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinetrack_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinetrack_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latency.
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
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(route, method, status).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// CacheMetrics counts cache traffic per namespace.
type CacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{
		hits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinetrack_cache_hits_total",
			Help: "Cache hits by namespace.",
		}, []string{"namespace"}),
		misses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinetrack_cache_misses_total",
			Help: "Cache misses by namespace.",
		}, []string{"namespace"}),
		evictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinetrack_cache_evictions_total",
			Help: "Cache evictions by namespace, including namespace sweeps.",
		}, []string{"namespace"}),
	}
}

func (m *CacheMetrics) Hit(namespace string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(namespace).Inc()
}

func (m *CacheMetrics) Miss(namespace string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(namespace).Inc()
}

func (m *CacheMetrics) Eviction(namespace string) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(namespace).Inc()
}
