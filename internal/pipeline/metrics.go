package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/christiano-developer/gaur/pkg/monitoring"
)

// Metrics tracks pipeline throughput across runs.
type Metrics struct {
	PostsSeen      *prometheus.CounterVec
	PostsAccepted  *prometheus.CounterVec
	PostsDiscarded *prometheus.CounterVec
	PostsReviewed  *prometheus.CounterVec
	AlertsCreated  *prometheus.CounterVec
	BatchDuration  *prometheus.HistogramVec
}

// NewMetrics registers pipeline metrics on the given collector.
func NewMetrics(collector *monitoring.MetricsCollector) *Metrics {
	return &Metrics{
		PostsSeen: collector.NewCounter(
			"pipeline_posts_seen_total",
			"Total posts pulled from the source",
			[]string{"platform"},
		),
		PostsAccepted: collector.NewCounter(
			"pipeline_posts_accepted_total",
			"Posts retained by the triage gate",
			[]string{"platform", "risk_level"},
		),
		PostsDiscarded: collector.NewCounter(
			"pipeline_posts_discarded_total",
			"Posts dropped by the triage gate",
			[]string{"platform"},
		),
		PostsReviewed: collector.NewCounter(
			"pipeline_posts_reviewed_total",
			"Posts routed to human review after failed analysis",
			[]string{"platform"},
		),
		AlertsCreated: collector.NewCounter(
			"pipeline_alerts_created_total",
			"Fraud alerts written to the sink",
			[]string{"platform", "fraud_type"},
		),
		BatchDuration: collector.NewHistogram(
			"pipeline_batch_duration_seconds",
			"Wall time to classify and persist one batch",
			[]string{"stage"},
			prometheus.DefBuckets,
		),
	}
}
