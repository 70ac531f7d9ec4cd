package middleware

import (
	"net/http"
	"strconv"
	"time"

	"projectbasis/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts, latency and in-flight requests
// per route template.
type MetricsMiddleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	handler  http.Handler
}

// NewMetricsMiddleware registers the HTTP collectors on registry.
func NewMetricsMiddleware(registry *prometheus.Registry) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.duration, m.inflight} {
		if err := registry.Register(collector); err != nil {
			return nil, errors.Wrap(err, "failed to register http metrics")
		}
	}

	return m, nil
}

// Handle instruments the next handler.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.inflight.Inc()
		defer m.inflight.Dec()

		start := time.Now()
		err := next(c)

		// The error handler has not written the response yet.
		status := c.Response().Status
		if err != nil {
			status = statusOf(err)
		}

		route := c.Path()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request().Method

		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Expose serves the registry in the prometheus text format.
func (m *MetricsMiddleware) Expose(c echo.Context) error {
	m.handler.ServeHTTP(c.Response(), c.Request())

	return nil
}
