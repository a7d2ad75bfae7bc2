// Package metrics provides Prometheus metrics for the wide-event pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsFinalized counts finalized events by sampling decision (keep/drop).
	EventsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopylog_events_finalized_total",
		Help: "Total number of finalized wide events, by sampling decision.",
	}, []string{"decision"})

	// EventsIngested counts events accepted on the ingest endpoint.
	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canopylog_events_ingested_total",
		Help: "Total number of wide events accepted from remote clients.",
	})

	// SinkFailures counts drain deliveries that failed, by sink.
	SinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopylog_sink_failures_total",
		Help: "Total number of failed sink deliveries, by sink.",
	}, []string{"sink"})

	// EnricherFailures counts enrichers that panicked during finalization.
	EnricherFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canopylog_enricher_failures_total",
		Help: "Total number of enricher failures during finalization.",
	})

	// EventDuration observes the duration field of finalized events.
	EventDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canopylog_event_duration_seconds",
		Help:    "Request duration recorded on finalized wide events.",
		Buckets: prometheus.DefBuckets,
	})
)
