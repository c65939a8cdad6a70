package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishisakhi_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "krishisakhi_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishisakhi_auth_attempts_total",
		Help: "Registrations and logins by operation and result",
	}, []string{"operation", "result"})

	recordsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishisakhi_records_created_total",
		Help: "Farms, activities and detections stored",
	}, []string{"kind"})

	chatResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishisakhi_chat_responses_total",
		Help: "Chat answers by matched rule and language",
	}, []string{"rule", "language"})

	forecastCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishisakhi_forecast_cache_total",
		Help: "Forecast cache lookups by result",
	}, []string{"result"})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krishisakhi_cache_evictions_total",
		Help: "Expired in-memory cache entries removed by the janitor",
	})

	chatSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "krishisakhi_chat_sessions_active",
		Help: "Open websocket chat sessions",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuth counts a register/login/demo-login outcome.
func ObserveAuth(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}

// ObserveRecordCreated counts a stored farm, activity or detection.
func ObserveRecordCreated(kind string) {
	recordsCreated.WithLabelValues(kind).Inc()
}

// ObserveChatResponse counts which rule answered a chat message.
func ObserveChatResponse(rule, language string) {
	chatResponses.WithLabelValues(rule, language).Inc()
}

// ObserveForecastCache counts a cache hit, miss or error.
func ObserveForecastCache(result string) {
	forecastCache.WithLabelValues(result).Inc()
}

// ObserveCacheEvictions adds n janitor evictions.
func ObserveCacheEvictions(n int) {
	if n > 0 {
		cacheEvictions.Add(float64(n))
	}
}

// ChatSessionOpened increments the open chat session gauge.
func ChatSessionOpened() {
	chatSessions.Inc()
}

// ChatSessionClosed decrements the open chat session gauge.
func ChatSessionClosed() {
	chatSessions.Dec()
}
