package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi/fakeapitest"
)

func TestEmployeeClient_ListEmployees(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantLen    int
		wantErr    error
		wantStatus int
	}{
		{
			name:    "one record",
			status:  http.StatusOK,
			body:    `[{"employeeId":1,"firstName":"A","lastName":"B"}]`,
			wantLen: 1,
		},
		{
			name:    "empty list",
			status:  http.StatusOK,
			body:    `[]`,
			wantLen: 0,
		},
		{
			name:       "forbidden",
			status:     http.StatusForbidden,
			body:       `{"message":"Insufficient permissions"}`,
			wantErr:    domain.ErrFetchHTTPStatus,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       "Invalid token",
			wantErr:    domain.ErrFetchHTTPStatus,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "object instead of array",
			status:  http.StatusOK,
			body:    `{"employees":[]}`,
			wantErr: domain.ErrFetchMalformedResponse,
		},
		{
			name:    "null",
			status:  http.StatusOK,
			body:    `null`,
			wantErr: domain.ErrFetchMalformedResponse,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `[{"employeeId":`,
			wantErr: domain.ErrFetchMalformedResponse,
		},
		{
			name:    "trailing data after array",
			status:  http.StatusOK,
			body:    `[{"employeeId":1}] trailing-junk`,
			wantErr: domain.ErrFetchMalformedResponse,
		},
		{
			name:    "two arrays",
			status:  http.StatusOK,
			body:    `[] []`,
			wantErr: domain.ErrFetchMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != EmployeesPath {
					t.Errorf("path = %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
					t.Errorf("Authorization = %q", got)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			c := NewEmployeeClient(newTransport(srv.URL), quietClient())
			got, err := c.ListEmployees(context.Background(), "abc123")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if domain.HTTPStatusOf(err) != tt.wantStatus {
					t.Errorf("status = %d, want %d", domain.HTTPStatusOf(err), tt.wantStatus)
				}
				if domain.UserMessage(err) != domain.MsgFetchFailed {
					t.Errorf("UserMessage() = %q", domain.UserMessage(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ListEmployees() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestEmployeeClient_ListEmployees_FieldsRoundTrip(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"employeeId":1,"firstName":"A","lastName":"B"},{"employeeId":2,"salary":1234.5,"managerId":1}]`)
	})

	c := NewEmployeeClient(newTransport(srv.URL), quietClient())
	got, err := c.ListEmployees(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ListEmployees() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	first := got[0]
	if *first.EmployeeID != 1 || *first.FirstName != "A" || *first.LastName != "B" {
		t.Errorf("first = %+v", first)
	}
	if first.Email != nil || first.Salary != nil {
		t.Error("absent fields should stay nil")
	}

	second := got[1]
	if second.FirstName != nil {
		t.Error("absent firstName should stay nil")
	}
	if *second.Salary != 1234.5 || *second.ManagerID != 1 {
		t.Errorf("second = %+v", second)
	}
}

func TestEmployeeClient_NoToken(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c := NewEmployeeClient(newTransport(srv.URL), quietClient())

	if _, err := c.ListEmployees(context.Background(), ""); !errors.Is(err, domain.ErrNoToken) {
		t.Errorf("ListEmployees() error = %v, want ErrNoToken", err)
	}
	if _, err := c.GetEmployeeProfile(context.Background(), "  ", 100); !errors.Is(err, domain.ErrNoToken) {
		t.Errorf("GetEmployeeProfile() error = %v, want ErrNoToken", err)
	}
	if srv.hits.Load() != 0 {
		t.Errorf("server received %d requests, want 0", srv.hits.Load())
	}
}

func TestEmployeeClient_Transport(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	c := NewEmployeeClient(newTransport(url), quietClient())
	_, err := c.ListEmployees(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrFetchTransport) {
		t.Errorf("error = %v, want ErrFetchTransport", err)
	}
}

func TestEmployeeClient_GetEmployeeProfile(t *testing.T) {
	api, url := fakeapitest.Start(t, fakeapi.Config{})
	token, err := api.IssueToken(fakeapi.DefaultUsers()[0])
	if err != nil {
		t.Fatal(err)
	}

	c := NewEmployeeClient(newTransport(url), quietClient())

	profile, err := c.GetEmployeeProfile(context.Background(), domain.Token(token), 101)
	if err != nil {
		t.Fatalf("GetEmployeeProfile() error = %v", err)
	}
	if profile.JobDetails == nil || profile.JobDetails.Manager == nil || *profile.JobDetails.Manager.ManagerID != 100 {
		t.Errorf("profile = %+v", profile)
	}

	_, err = c.GetEmployeeProfile(context.Background(), domain.Token(token), 999)
	if !errors.Is(err, domain.ErrFetchHTTPStatus) || domain.HTTPStatusOf(err) != http.StatusNotFound {
		t.Errorf("missing profile error = %v", err)
	}
}
