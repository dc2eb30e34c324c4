// Package fakeapitest serves a fakeapi.Server for the length of a test.
package fakeapitest

import (
	"net/http/httptest"
	"testing"

	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
)

// Start serves a new fakeapi.Server on a loopback httptest listener for
// the duration of the test and returns it with its base URL.
func Start(tb testing.TB, cfg fakeapi.Config) (*fakeapi.Server, string) {
	tb.Helper()
	s := fakeapi.New(cfg)
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	return s, ts.URL
}
