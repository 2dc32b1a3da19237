// Package metrics provides Prometheus metrics for the turizm server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. Each instance owns its registry so tests can
// build as many servers as they like.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	PlansInFlight      prometheus.Gauge

	ForumTopicsCreated prometheus.Counter
	ForumRepliesTotal  prometheus.Counter
	ForumConflicts     prometheus.Counter

	RateLimited prometheus.Counter

	StartTime time.Time
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	m := &Metrics{Registry: reg, StartTime: time.Now()}

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turizm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turizm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.GenerationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turizm_itinerary_generations_total",
			Help: "Itinerary generations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	m.GenerationDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "turizm_itinerary_generation_duration_seconds",
			Help:    "Duration of calls to the text generator",
			Buckets: []float64{.25, .5, 1, 2, 4, 8, 15, 30, 60},
		},
	)
	m.PlansInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "turizm_plans_in_flight",
			Help: "Hosted plans currently generating",
		},
	)

	m.ForumTopicsCreated = f.NewCounter(prometheus.CounterOpts{
		Name: "turizm_forum_topics_created_total",
		Help: "Forum topics created",
	})
	m.ForumRepliesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "turizm_forum_replies_total",
		Help: "Forum replies stored",
	})
	m.ForumConflicts = f.NewCounter(prometheus.CounterOpts{
		Name: "turizm_forum_version_conflicts_total",
		Help: "Optimistic update conflicts retried on forum topics",
	})

	m.RateLimited = f.NewCounter(prometheus.CounterOpts{
		Name: "turizm_rate_limited_total",
		Help: "Requests rejected by the generation rate limiter",
	})

	f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "turizm_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.StartTime).Seconds() },
	)

	return m
}

// RecordRequest records one handled HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordGeneration records one call to the text generator.
func (m *Metrics) RecordGeneration(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(provider, outcome).Inc()
	m.GenerationDuration.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
