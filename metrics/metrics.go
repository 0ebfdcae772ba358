// Package metrics exports stream and circuit breaker activity to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fxsml/rxpipe/breaker"
	"github.com/fxsml/rxpipe/observable"
)

const metricsNamespace = "rxpipe"

// Collector is a prometheus.Collector that implements observable.Recorder.
// Pass it to streams with observable.WithRecorder and to breakers through
// BreakerStateChange.
type Collector struct {
	emitted            *prometheus.CounterVec
	dropped            *prometheus.CounterVec
	terminated         *prometheus.CounterVec
	subscriberPanics   *prometheus.CounterVec
	queueLatency       *prometheus.HistogramVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec
}

var _ observable.Recorder = (*Collector)(nil)

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		emitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "emitted_total",
				Help:      "The number of values dispatched to subscribers.",
			}, []string{"stream"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dropped_total",
				Help:      "The number of values discarded by backpressure strategies.",
			}, []string{"stream", "reason"},
		),
		terminated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "terminated_total",
				Help:      "The number of streams that completed or errored.",
			}, []string{"stream", "state"},
		),
		subscriberPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "subscriber_panics_total",
				Help:      "The number of recovered observer panics.",
			}, []string{"stream"},
		),
		queueLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "queue_latency_seconds",
				Help:      "The time a queued notification waited for dispatch.",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
			}, []string{"stream"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "breaker_state",
				Help:      "The circuit breaker state: 0 closed, 1 open, 2 half-open.",
			}, []string{"breaker"},
		),
		breakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "breaker_transitions_total",
				Help:      "The number of circuit breaker state changes.",
			}, []string{"breaker", "from", "to"},
		),
	}
}

// Emitted is part of the observable.Recorder interface.
func (c *Collector) Emitted(stream string) {
	c.emitted.WithLabelValues(stream).Inc()
}

// Dropped is part of the observable.Recorder interface.
func (c *Collector) Dropped(stream, reason string) {
	c.dropped.WithLabelValues(stream, reason).Inc()
}

// Terminated is part of the observable.Recorder interface.
func (c *Collector) Terminated(stream string, state observable.State) {
	c.terminated.WithLabelValues(stream, state.String()).Inc()
}

// SubscriberPanicked is part of the observable.Recorder interface.
func (c *Collector) SubscriberPanicked(stream string) {
	c.subscriberPanics.WithLabelValues(stream).Inc()
}

// Dispatched is part of the observable.Recorder interface.
func (c *Collector) Dispatched(stream string, latency time.Duration) {
	c.queueLatency.WithLabelValues(stream).Observe(latency.Seconds())
}

// BreakerStateChange records a breaker state change. Its signature matches
// breaker.Config.OnStateChange.
func (c *Collector) BreakerStateChange(name string, from, to breaker.State) {
	c.breakerState.WithLabelValues(name).Set(float64(to))
	c.breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.emitted.Describe(ch)
	c.dropped.Describe(ch)
	c.terminated.Describe(ch)
	c.subscriberPanics.Describe(ch)
	c.queueLatency.Describe(ch)
	c.breakerState.Describe(ch)
	c.breakerTransitions.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.emitted.Collect(ch)
	c.dropped.Collect(ch)
	c.terminated.Collect(ch)
	c.subscriberPanics.Collect(ch)
	c.queueLatency.Collect(ch)
	c.breakerState.Collect(ch)
	c.breakerTransitions.Collect(ch)
}
