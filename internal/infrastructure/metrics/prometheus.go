// Package metrics exposes gateway Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for upstream calls.
const (
	OutcomeOK          = "ok"
	OutcomeAuth        = "auth"
	OutcomeStatus      = "status"
	OutcomeNetwork     = "network"
	OutcomeParse       = "parse"
	OutcomeRateLimited = "rate_limited"
)

// Metrics holds all gateway collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	SearchesCreated  *prometheus.CounterVec
	OffersReturned   prometheus.Counter
	OffersDropped    *prometheus.CounterVec
	PollDuration     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing nil uses a fresh registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		SearchesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_created_total",
			Help:      "Searches created by mode",
		}, []string{"mode"}),
		OffersReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_returned_total",
			Help:      "Offers returned to clients with a validated booking URL",
		}),
		OffersDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_dropped_total",
			Help:      "Offers dropped during booking URL resolution, by reason",
		}, []string{"reason"}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time taken to serve one gateway poll",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		gatherer: reg,
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SearchCreated counts a created search; mode is "live" or "demo".
func (m *Metrics) SearchCreated(mode string) {
	if m == nil {
		return
	}
	m.SearchesCreated.WithLabelValues(mode).Inc()
}

// OfferDropped counts one dropped offer.
func (m *Metrics) OfferDropped(reason string) {
	if m == nil {
		return
	}
	m.OffersDropped.WithLabelValues(reason).Inc()
}

// PollServed records a finished poll.
func (m *Metrics) PollServed(returned int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OffersReturned.Add(float64(returned))
	m.PollDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
