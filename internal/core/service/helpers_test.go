package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/cli/connection"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
)

// countingServer serves handler and counts requests.
type countingServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newTransport(url string, opts ...connection.Option) *connection.HTTPClient {
	opts = append([]connection.Option{
		connection.WithTimeout(5 * time.Second),
		connection.WithLogger(logger.Nop()),
	}, opts...)
	return connection.NewHTTPClient(url, opts...)
}

func quietClient() ClientOption {
	return WithLogger(logger.Nop())
}
