// Package metrics exposes Prometheus collectors for HTTP traffic and the live channel.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "storefront/internal/errors"
)

const namespace = "storefront"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	wsConnections  prometheus.Gauge
	realtimeEvents *prometheus.CounterVec
	dropped        prometheus.Counter
}

// New creates a registry with the application collectors plus process and Go runtime
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Currently open websocket connections.",
		}),
		realtimeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "realtime",
				Name:      "events_total",
				Help:      "Inbound real-time events by name and outcome.",
			},
			[]string{"event", "outcome"},
		),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "dropped_clients_total",
			Help:      "Connections dropped because their send buffer was full.",
		}),
	}

	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.wsConnections,
		m.realtimeEvents,
		m.dropped,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency keyed by the route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = errorStatus(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// errorStatus is the status the error handler will answer err with.
func errorStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperrors.MapErrorToHTTP(err).StatusCode
}

// ConnectionOpened and ConnectionClosed track the live connection gauge.
func (m *Metrics) ConnectionOpened() { m.wsConnections.Inc() }

func (m *Metrics) ConnectionClosed() { m.wsConnections.Dec() }

// EventHandled counts one inbound event with outcome "ok" or "error".
func (m *Metrics) EventHandled(event, outcome string) {
	m.realtimeEvents.WithLabelValues(event, outcome).Inc()
}

// ClientDropped counts a connection dropped for backpressure.
func (m *Metrics) ClientDropped() { m.dropped.Inc() }
