package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuthClient_Login(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken domain.Token
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      `{"token":"abc123"}`,
			wantToken: "abc123",
		},
		{
			name:      "success with extra fields",
			status:    http.StatusOK,
			body:      `{"token":"abc123","expires_in":900}`,
			wantToken: "abc123",
		},
		{
			name:    "rejected with message",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Invalid credentials"}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: "Invalid credentials",
		},
		{
			name:    "rejected with numeric code",
			status:  http.StatusUnauthorized,
			body:    `{"code":401,"message":"Invalid credentials"}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: "Invalid credentials",
		},
		{
			name:    "rejected with padded message",
			status:  http.StatusUnauthorized,
			body:    `{"message":"  Invalid credentials  "}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: "  Invalid credentials  ",
		},
		{
			name:    "rejected with blank message",
			status:  http.StatusUnauthorized,
			body:    `{"message":"   "}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: "   ",
		},
		{
			name:    "rejected with non-string message",
			status:  http.StatusUnauthorized,
			body:    `{"message":{"text":"nope"}}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: domain.MsgLoginFailed,
		},
		{
			name:    "rejected without body",
			status:  http.StatusUnauthorized,
			wantErr: domain.ErrAuthRejected,
			wantMsg: domain.MsgLoginFailed,
		},
		{
			name:    "rejected with non-json body",
			status:  http.StatusInternalServerError,
			body:    "upstream exploded",
			wantErr: domain.ErrAuthRejected,
			wantMsg: domain.MsgLoginFailed,
		},
		{
			name:    "rejected with empty message",
			status:  http.StatusBadRequest,
			body:    `{"message":""}`,
			wantErr: domain.ErrAuthRejected,
			wantMsg: domain.MsgLoginFailed,
		},
		{
			name:    "missing token",
			status:  http.StatusOK,
			body:    `{"user":"alice"}`,
			wantErr: domain.ErrAuthMalformedResponse,
			wantMsg: domain.MsgLoginFailed,
		},
		{
			name:    "empty token",
			status:  http.StatusOK,
			body:    `{"token":""}`,
			wantErr: domain.ErrAuthMalformedResponse,
		},
		{
			name:    "non-string token",
			status:  http.StatusOK,
			body:    `{"token":42}`,
			wantErr: domain.ErrAuthMalformedResponse,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `{"token":`,
			wantErr: domain.ErrAuthMalformedResponse,
		},
		{
			name:    "trailing data after token",
			status:  http.StatusOK,
			body:    `{"token":"abc123"} trailing`,
			wantErr: domain.ErrAuthMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != LoginPath {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				var creds domain.Credentials
				if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username != "alice" || creds.Password != "secret" {
					t.Errorf("body = %+v, %v", creds, err)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			c := NewAuthClient(newTransport(srv.URL), quietClient())
			token, err := c.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				if token != tt.wantToken {
					t.Errorf("token = %q, want %q", token, tt.wantToken)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if token != "" {
				t.Errorf("token = %q on failure", token)
			}
			if tt.wantMsg != "" {
				if got := domain.UserMessage(err); got != tt.wantMsg {
					t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
				}
			}
			if errors.Is(err, domain.ErrAuthRejected) && domain.HTTPStatusOf(err) != tt.status {
				t.Errorf("status = %d, want %d", domain.HTTPStatusOf(err), tt.status)
			}
		})
	}
}

func TestAuthClient_Login_InvalidCredentials(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c := NewAuthClient(newTransport(srv.URL), quietClient())

	for _, creds := range []domain.Credentials{
		{Username: "", Password: "secret"},
		{Username: "alice", Password: ""},
	} {
		if _, err := c.Login(context.Background(), creds); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Login(%+v) error = %v, want ErrInvalidArgument", creds, err)
		}
	}
	if srv.hits.Load() != 0 {
		t.Errorf("server received %d requests, want 0", srv.hits.Load())
	}
}

func TestAuthClient_Login_Transport(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	c := NewAuthClient(newTransport(url), quietClient())
	_, err := c.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})

	if !errors.Is(err, domain.ErrAuthTransport) {
		t.Fatalf("error = %v, want ErrAuthTransport", err)
	}
	if msg := domain.UserMessage(err); msg == "" || msg == domain.MsgLoginFailed {
		t.Errorf("UserMessage() = %q, want the underlying failure", msg)
	}
}

func TestAuthClient_Login_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	c := NewAuthClient(newTransport(srv.URL), quietClient())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Login(ctx, domain.Credentials{Username: "alice", Password: "secret"})
	if !errors.Is(err, domain.ErrAuthTransport) {
		t.Fatalf("error = %v, want ErrAuthTransport", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want to wrap DeadlineExceeded", err)
	}
}

func TestAuthClient_Login_Canceled(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	c := NewAuthClient(newTransport(srv.URL), quietClient())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Login(ctx, domain.Credentials{Username: "alice", Password: "secret"})
	if !errors.Is(err, domain.ErrCanceled) {
		t.Fatalf("error = %v, want ErrCanceled", err)
	}
}

func TestAuthClient_Metrics(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	reg := metric.NewRegistry()
	c := NewAuthClient(newTransport(srv.URL), quietClient(), WithMetrics(reg))

	c.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(metric.OpLogin, "rejected")); got != 1 {
		t.Errorf("rejected count = %v, want 1", got)
	}
}
