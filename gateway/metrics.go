package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "streamgate"

// metrics holds the gateway's Prometheus collectors, registered on a private
// registry so tests can create any number of gateways.
type metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	upstreamConnect *prometheus.HistogramVec
	streams         *prometheus.CounterVec
	streamEvents    *prometheus.CounterVec
	streamDuration  *prometheus.HistogramVec
	activeStreams   prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		upstreamConnect: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_connect_seconds",
			Help:      "Time until the upstream provider accepted a completion request.",
			// Optimized for LLM time-to-headers (50ms - 30s)
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"route", "result"}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "streams_total",
			Help:      "Event streams by route and outcome (completed, faulted, disconnected).",
		}, []string{"route", "outcome"}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stream_events_total",
			Help:      "Push events written to clients, including terminal and error markers.",
		}, []string{"route"}),
		streamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stream_duration_seconds",
			Help:      "Duration of event streams from first pull to close.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"route", "outcome"}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_streams",
			Help:      "Event streams currently open.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.upstreamConnect,
		m.streams,
		m.streamEvents,
		m.streamDuration,
		m.activeStreams,
	)

	return m
}

func (m *metrics) observeRequest(route, method string, status int) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (m *metrics) observeUpstreamConnect(route string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamConnect.WithLabelValues(route, result).Observe(elapsed.Seconds())
}

func (m *metrics) observeStream(route, outcome string, events int, elapsed time.Duration) {
	m.streams.WithLabelValues(route, outcome).Inc()
	m.streamEvents.WithLabelValues(route).Add(float64(events))
	m.streamDuration.WithLabelValues(route, outcome).Observe(elapsed.Seconds())
}
