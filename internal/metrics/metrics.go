// Package metrics exposes Prometheus counters for feed calls, the aggregation
// cache and pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "losers_bracket"

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry     *prometheus.Registry
	feedCalls    *prometheus.CounterVec
	feedLatency  *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	runs         *prometheus.CounterVec
	liveFailures prometheus.Counter
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		feedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_calls_total",
			Help:      "Calls to league data feeds by feed, call and outcome.",
		}, []string{"feed", "call", "outcome"}),
		feedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_call_seconds",
			Help:      "Latency of league data feed calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed", "call"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_cache_lookups_total",
			Help:      "Aggregation cache lookups by result.",
		}, []string{"result"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		liveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_fetch_failures_total",
			Help:      "Live matchup fetches that were absorbed as unavailable.",
		}),
	}
	r.registry.MustRegister(r.feedCalls, r.feedLatency, r.cacheLookups, r.runs, r.liveFailures)
	return r
}

// RecordFeedCall counts a feed call and observes its latency.
func (r *Recorder) RecordFeedCall(feed, call string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.feedCalls.WithLabelValues(feed, call, outcome).Inc()
	r.feedLatency.WithLabelValues(feed, call).Observe(duration.Seconds())
}

// RecordCacheLookup counts an aggregation cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRun counts a pipeline run by outcome label.
func (r *Recorder) RecordRun(outcome string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
}

// RecordLiveFailure counts an absorbed live fetch failure.
func (r *Recorder) RecordLiveFailure() {
	if r == nil {
		return
	}
	r.liveFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
