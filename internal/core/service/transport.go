package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
)

// Transport sends requests to the API. A nil error means a response
// was received, whatever its status.
//
// *connection.HTTPClient implements Transport.
type Transport interface {
	Get(ctx context.Context, path string, token domain.Token) (*http.Response, error)
	Post(ctx context.Context, path string, body any) (*http.Response, error)
}

// ClientOption configures AuthClient and EmployeeClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger  logger.Logger
	metrics *metric.Registry
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithMetrics records request counts and latencies in r.
func WithMetrics(r *metric.Registry) ClientOption {
	return func(o *clientOptions) {
		o.metrics = r
	}
}

func newClientOptions(opts []ClientOption) clientOptions {
	o := clientOptions{logger: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// canceled maps a transport failure caused by ctx cancellation onto
// ErrCanceled. It returns nil for any other failure.
func canceled(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return domain.ErrCanceled.WithCause(context.Canceled)
	}
	return nil
}
