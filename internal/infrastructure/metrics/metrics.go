package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SettlementsTotal counts settlement outcomes by result label
	// (confirmed, virtual_account_issued, replayed, amount_mismatch, unsupported_status, error).
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reservation",
		Name:      "settlements_total",
		Help:      "Payment settlement attempts by outcome.",
	}, []string{"outcome"})

	// RefundsTotal counts refund outcomes (full, partial, ceiling_exceeded, reconciliation_required, error).
	RefundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reservation",
		Name:      "refunds_total",
		Help:      "Admin refunds by outcome.",
	}, []string{"outcome"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reservation",
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of payment provider calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation", "outcome"})

	NotificationsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reservation",
		Name:      "notifications_enqueued_total",
		Help:      "Notification tasks handed to the queue, by type and result.",
	}, []string{"type", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reservation",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func ObserveSettlement(outcome string) {
	SettlementsTotal.WithLabelValues(outcome).Inc()
}

func ObserveRefund(outcome string) {
	RefundsTotal.WithLabelValues(outcome).Inc()
}

func ObserveProvider(operation, outcome string, started time.Time) {
	ProviderRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(started).Seconds())
}

func ObserveNotification(taskType, result string) {
	NotificationsEnqueued.WithLabelValues(taskType, result).Inc()
}

// Middleware records request latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, statusClass(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
