// Package prometheus exports refresh events as Prometheus metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.RunObserver = (*Observer)(nil)

const namespace = "flightdeck"

// Observer records every frozen refresh event on its own registry.
type Observer struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runErrors   *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	sourceRows  *prometheus.GaugeVec
	lastRun     *prometheus.GaugeVec
	runDuration prometheus.Histogram
}

// NewObserver creates an observer and registers its collectors.
func NewObserver() *Observer {
	o := &Observer{registry: prometheus.NewRegistry()}

	o.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Briefing runs by terminal status and trigger",
	}, []string{"status", "trigger"})
	o.runErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_errors_total",
		Help:      "Error taxonomy entries recorded on runs",
	}, []string{"kind"})
	o.deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Delivery attempts by sink role and outcome",
	}, []string{"sink", "status"})
	o.sourceRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_rows",
		Help:      "Per-source stage counts of the last run",
	}, []string{"source", "stage"})
	o.lastRun = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last run completing with each status",
	}, []string{"status"})
	o.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time from run start to terminal state",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	o.registry.MustRegister(
		o.runs, o.runErrors, o.deliveries,
		o.sourceRows, o.lastRun, o.runDuration,
	)
	return o
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// ObserveRun implements driven.RunObserver.
func (o *Observer) ObserveRun(event domain.RefreshEvent) {
	o.runs.WithLabelValues(string(event.Status), string(event.Trigger)).Inc()
	for _, kind := range event.Errors {
		o.runErrors.WithLabelValues(string(kind)).Inc()
	}

	if d := event.CompletedAt.Sub(event.StartedAt); d >= 0 {
		o.runDuration.Observe(d.Seconds())
	}
	if !event.CompletedAt.IsZero() {
		o.lastRun.WithLabelValues(string(event.Status)).Set(float64(event.CompletedAt.Unix()))
	}

	for _, src := range domain.AllSources() {
		c := event.Counts[src]
		o.sourceRows.WithLabelValues(string(src), "raw").Set(float64(c.Raw))
		o.sourceRows.WithLabelValues(string(src), "dropped").Set(float64(c.Dropped))
		o.sourceRows.WithLabelValues(string(src), "out_of_scope").Set(float64(c.OutOfScope))
		o.sourceRows.WithLabelValues(string(src), "in_scope").Set(float64(c.InScope))
		o.sourceRows.WithLabelValues(string(src), "actionable").Set(float64(c.Actionable))
	}

	if d := event.Delivery; d != nil {
		o.deliveries.WithLabelValues("primary", string(d.PrimaryStatus)).Inc()
		if d.FallbackStatus != domain.SinkNotAttempted {
			o.deliveries.WithLabelValues("fallback", string(d.FallbackStatus)).Inc()
		}
	}
}
