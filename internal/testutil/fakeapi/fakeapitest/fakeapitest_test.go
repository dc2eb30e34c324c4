package fakeapitest

import (
	"net/http"
	"testing"

	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
)

func TestStart(t *testing.T) {
	api, url := Start(t, fakeapi.Config{})

	resp, err := http.Get(url + "/v2/employees")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a token", resp.StatusCode)
	}
	if api.EmployeeCalls() != 0 {
		t.Errorf("EmployeeCalls() = %d, want 0 for a rejected request", api.EmployeeCalls())
	}
}
