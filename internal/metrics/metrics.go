// Package metrics holds the Prometheus collectors for the shop. Recording
// methods are safe on a nil *Metrics so services can run without them.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"orchid-shop/internal/apperr"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orchid_shop"

type Metrics struct {
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	lineItemsAdded   *prometheus.CounterVec
	paymentURLs      *prometheus.CounterVec
	paymentCallbacks *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		lineItemsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_line_items_added_total",
				Help:      "Line items added to pending orders.",
			},
			[]string{"result"}, // created | merged | failed
		),
		paymentURLs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_urls_total",
				Help:      "Payment URL requests sent to the gateway.",
			},
			[]string{"result"}, // success | failed
		),
		paymentCallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_callbacks_total",
				Help:      "Gateway payment callbacks handled.",
			},
			[]string{"result"}, // success | failed | duplicate
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.lineItemsAdded,
		m.paymentURLs,
		m.paymentCallbacks,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware labels by route template (c.Path()) to keep cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = apperr.HTTPStatus(err)
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			labels := prometheus.Labels{
				"method": c.Request().Method,
				"path":   path,
				"status": strconv.Itoa(status),
			}
			m.requestTotal.With(labels).Inc()
			m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) LineItemAdded(result string) {
	if m == nil {
		return
	}
	m.lineItemsAdded.WithLabelValues(result).Inc()
}

func (m *Metrics) PaymentURL(result string) {
	if m == nil {
		return
	}
	m.paymentURLs.WithLabelValues(result).Inc()
}

func (m *Metrics) PaymentCallback(result string) {
	if m == nil {
		return
	}
	m.paymentCallbacks.WithLabelValues(result).Inc()
}
