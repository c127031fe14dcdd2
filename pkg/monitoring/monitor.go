package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 推荐引擎相关指标
	RecommendationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendations produced, by action",
		},
		[]string{"action"},
	)

	ProfileCacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_profile_cache_total",
			Help: "Performance profile cache lookups, by result",
		},
		[]string{"result"},
	)

	HistoryFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_history_fetch_seconds",
			Help:    "Duration of answer history fetches",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 3},
		},
	)

	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_upstream_failures_total",
			Help: "History store failures, by reason",
		},
		[]string{"reason"},
	)

	StudyTipsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_tips_total",
			Help: "Study tips served, by source",
		},
		[]string{"source"},
	)
)

var initOnce sync.Once

// Init 注册全部指标，可重复调用
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			RecommendationCounter,
			ProfileCacheCounter,
			HistoryFetchDuration,
			UpstreamFailures,
			StudyTipsCounter,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
