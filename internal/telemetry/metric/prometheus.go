package metric

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

// Operation labels.
const (
	OpLogin           = "login"
	OpListEmployees   = "list_employees"
	OpGetEmployee     = "get_employee"
	OpServerLogin     = "server_login"
	OpServerEmployees = "server_employees"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the request metrics and the Go
// runtime collector registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kci",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API requests by operation and result.",
		}, []string{"op", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kci",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request latency by operation.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
	}

	reg.MustRegister(r.RequestsTotal, r.RequestDuration)
	reg.MustRegister(collectors.NewGoCollector())
	return r
}

// Registerer returns the registerer for additional collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer returns the gatherer backing this registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one finished request. A nil registry is a no-op.
func (r *Registry) ObserveRequest(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(op, ResultOf(err)).Inc()
	r.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry in text format for node_exporter's
// textfile collector. The write is atomic.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// ResultOf maps an operation error onto a bounded result label.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCanceled), errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrAuthRejected):
		return "rejected"
	case errors.Is(err, domain.ErrFetchHTTPStatus):
		return "http_status"
	case errors.Is(err, domain.ErrAuthTransport), errors.Is(err, domain.ErrFetchTransport):
		return "transport"
	case errors.Is(err, domain.ErrAuthMalformedResponse), errors.Is(err, domain.ErrFetchMalformedResponse):
		return "malformed"
	case errors.Is(err, domain.ErrNoToken):
		return "no_token"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
