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

	AttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_attempts_total",
			Help: "Submitted assessment attempts by result",
		},
		[]string{"passed"},
	)

	CertificateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_issued_total",
			Help: "Issued certificates by source (submit or reconcile)",
		},
		[]string{"source"},
	)

	ScenarioOutcomeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_outcomes_total",
			Help: "Scenario simulations that reached a leaf, by verdict",
		},
		[]string{"compliant"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AttemptCounter,
			CertificateCounter,
			ScenarioOutcomeCounter,
		)
	})
}

func ObserveAttempt(passed bool) {
	AttemptCounter.WithLabelValues(strconv.FormatBool(passed)).Inc()
}

func ObserveCertificate(source string) {
	CertificateCounter.WithLabelValues(source).Inc()
}

func ObserveScenarioOutcome(compliant bool) {
	ScenarioOutcomeCounter.WithLabelValues(strconv.FormatBool(compliant)).Inc()
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
