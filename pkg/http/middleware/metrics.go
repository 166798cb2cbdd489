package middleware

import (
	"errors"
	"strconv"
	"time"

	applogger "CryptoCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type httpMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
	responseSize    *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	return &httpMetrics{
		requestsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		)),
		requestDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "status", "class"},
		)),
		inFlight: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "http_in_flight_requests",
				Help: "Current number of in-flight HTTP requests",
			},
			[]string{"route", "method"},
		)),
		responseSize: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
			},
			[]string{"route", "method", "status", "class"},
		)),
	}
}

// register returns the collector already living on reg when one with the
// same descriptor exists, so several servers can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Metrics records request metrics with low cardinality labels. The route
// label is the matched Echo route template (e.g. "/api/outcomes/latest").
func Metrics(reg prometheus.Registerer, l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	m := newHTTPMetrics(reg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeLabel(c)
			method := c.Request().Method

			m.inFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			status := strconv.Itoa(res.Status)
			class := statusClass(res.Status)
			duration := time.Since(start)

			m.requestsTotal.WithLabelValues(route, method, status).Inc()
			m.requestDuration.WithLabelValues(route, method, status, class).Observe(duration.Seconds())
			m.responseSize.WithLabelValues(route, method, status, class).Observe(float64(res.Size))
			m.inFlight.WithLabelValues(route, method).Dec()

			if l != nil && slowThreshold > 0 && duration >= slowThreshold && res.Status < 500 {
				l.Warn("http request slow",
					applogger.String("route", route),
					applogger.String("method", method),
					applogger.String("status", status),
					applogger.Duration("duration_ms", duration),
					applogger.Int64("bytes", res.Size),
				)
			}
			return nil
		}
	}
}

// routeLabel prefers the matched route template; unmatched requests share one label.
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
