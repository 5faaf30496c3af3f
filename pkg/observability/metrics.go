package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics bundles the dispatch collectors.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	Notifications *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_requests_total",
				Help: "Total number of dispatched requests",
			},
			[]string{"request", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courier_request_duration_seconds",
				Help:    "Duration of request dispatch, behaviors included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"request"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_notifications_total",
				Help: "Total number of notifications delivered to observers",
			},
			[]string{"notification"},
		),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration, m.Notifications} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// ObserveRequest records one dispatch.
func (m *Metrics) ObserveRequest(request, outcome string, elapsed time.Duration) {
	m.Requests.WithLabelValues(request, outcome).Inc()
	m.Duration.WithLabelValues(request).Observe(elapsed.Seconds())
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NotificationObserver counts notifications of type N.
// Subscribe it like any other notification handler.
type NotificationObserver[N any] struct {
	metrics *Metrics
}

// NewNotificationObserver creates an observer recording into m.
func NewNotificationObserver[N any](m *Metrics) *NotificationObserver[N] {
	return &NotificationObserver[N]{metrics: m}
}

// Handle increments the notification counter.
func (o *NotificationObserver[N]) Handle(ctx context.Context, n N) error {
	o.metrics.Notifications.WithLabelValues(fmt.Sprintf("%T", n)).Inc()
	return nil
}
