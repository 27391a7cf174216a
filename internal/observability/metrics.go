// Package observability provides logging, metrics, and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewRequestsTotal counts dispatcher requests by action and result.
	ReviewRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brc_review_requests_total",
		Help: "Total number of review dispatch requests by action and result",
	}, []string{"action", "result"})

	// WebhookDeliveriesTotal counts webhook deliveries by list label and outcome.
	WebhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brc_webhook_deliveries_total",
		Help: "Total number of outbound webhook deliveries by list and outcome",
	}, []string{"list", "outcome"})

	// WebhookDeliveryLatency records outbound webhook call latency per list.
	WebhookDeliveryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brc_webhook_delivery_latency_seconds",
		Help:    "Outbound webhook call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"list"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brc_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// QueueSize is the gauge of submissions per review state.
	QueueSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "brc_queue_size",
		Help: "Number of submissions per review state",
	}, []string{"state"})
)

// ObserveDelivery records one webhook delivery outcome and its latency.
func ObserveDelivery(list, outcome string, start time.Time) {
	WebhookDeliveriesTotal.WithLabelValues(list, outcome).Inc()
	WebhookDeliveryLatency.WithLabelValues(list).Observe(time.Since(start).Seconds())
}
