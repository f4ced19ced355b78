// Package metrics holds the Prometheus collectors of the notification
// service.
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

type Metrics struct {
	NotificationsCreated *prometheus.CounterVec
	NotificationsRead    prometheus.Counter
	NotificationsDeleted prometheus.Counter
	DeliveryOutcomes     *prometheus.CounterVec
	ScheduledReleased    prometheus.Counter
	ExpiredPurged        prometheus.Counter
	EventsDropped        prometheus.Counter
	DispatchFailures     prometheus.Counter

	HTTPRequestDuration *prometheus.HistogramVec
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		NotificationsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_created_total",
				Help: "Notifications persisted, by type and category",
			},
			[]string{"type", "category"},
		),
		NotificationsRead: f.NewCounter(prometheus.CounterOpts{
			Name: "notifications_read_total",
			Help: "markAsRead calls that hit a record",
		}),
		NotificationsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "notifications_deleted_total",
			Help: "Notifications removed through the API",
		}),
		DeliveryOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_delivery_outcomes_total",
				Help: "Recorded provider outcomes, by channel and status",
			},
			[]string{"channel", "status"},
		),
		ScheduledReleased: f.NewCounter(prometheus.CounterOpts{
			Name: "notifications_scheduled_released_total",
			Help: "Deferred notifications handed to the dispatcher",
		}),
		ExpiredPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "notifications_expired_purged_total",
			Help: "Expired notifications removed by the sweeper",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "notification_events_dropped_total",
			Help: "Lifecycle events dropped because the observer queue was full",
		}),
		DispatchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "notification_dispatch_publish_failures_total",
			Help: "Dispatcher publishes that returned an error",
		}),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method", "route", "code"},
		),
		GRPCRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),
		GRPCRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method"},
		),
		gatherer: reg,
	}
}

// NewWithRuntime is New plus the Go runtime and process collectors.
func NewWithRuntime() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveGRPC(method, code string, elapsed time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
