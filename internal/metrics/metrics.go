// Package metrics exposes Prometheus instrumentation for the translation
// relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage label values used by TaskAborts and StageDuration.
const (
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageSynthesize = "synthesize"
)

// Metrics holds all Prometheus collectors for the relay core.
type Metrics struct {
	// Dispatch
	TasksEnqueued prometheus.Counter
	TasksDropped  prometheus.Counter
	QueueDepth    prometheus.Gauge

	// Worker
	TasksCompleted prometheus.Counter
	TaskAborts     *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	TaskDuration   prometheus.Histogram

	// Delivery
	DeliveriesSent    prometheus.Counter
	DeliveriesDropped prometheus.Counter
}

// New creates and registers all collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TasksEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_tasks_enqueued_total",
			Help: "Total number of translation tasks enqueued",
		}),
		TasksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_tasks_dropped_total",
			Help: "Total number of tasks dropped due to a full queue",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_task_queue_depth",
			Help: "Current number of tasks waiting in the queue",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_tasks_completed_total",
			Help: "Total number of tasks that produced a delivery",
		}),
		TaskAborts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_task_aborts_total",
			Help: "Total number of tasks aborted, by pipeline stage",
		}, []string{"stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_task_duration_seconds",
			Help:    "End-to-end duration of one translation task",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		DeliveriesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_deliveries_sent_total",
			Help: "Total number of translated utterances delivered",
		}),
		DeliveriesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Total number of deliveries dropped (recipient gone or backpressure)",
		}),
	}
}
