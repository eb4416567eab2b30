// Package metrics exposes booking counters and HTTP latency to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/room-booking/internal/application"
)

const namespace = "booking"

// Metrics owns a registry and the booking collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	reservationsCreated *prometheus.CounterVec
	lookups             *prometheus.CounterVec
	roomCache           *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
}

var _ application.Observer = (*Metrics)(nil)

// New builds the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reservationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservations_created_total",
				Help:      "Count of reservation attempts by status.",
			},
			[]string{"status"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Count of reservation lookups by result.",
			},
			[]string{"result"},
		),
		roomCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "room_cache_total",
				Help:      "Room catalog cache reads by result.",
			},
			[]string{"result"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reservationsCreated,
		m.lookups,
		m.roomCache,
		m.requestDuration,
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ReservationAttempt(outcome string) {
	m.reservationsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LookupAttempt(outcome string) {
	m.lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RoomCacheAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.roomCache.WithLabelValues(result).Inc()
}

// ObserveRequest records one served request. route should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
