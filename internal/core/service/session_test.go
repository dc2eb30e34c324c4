package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/storage/tokenstore"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi/fakeapitest"
)

// failingStore fails every write.
type failingStore struct {
	*tokenstore.Memory
	getErr error
}

func (f *failingStore) Get(ctx context.Context) (domain.Token, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Memory.Get(ctx)
}

func (f *failingStore) Set(context.Context, domain.Token) error {
	return domain.ErrStorage.WithDetails("disk full")
}

func (f *failingStore) Clear(context.Context) error {
	return domain.ErrStorage.WithDetails("disk full")
}

// stubAuth returns a fixed result and counts calls.
type stubAuth struct {
	mu    sync.Mutex
	calls int
	token domain.Token
	err   error
}

func (s *stubAuth) Login(ctx context.Context, creds domain.Credentials) (domain.Token, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.token, s.err
}

func newController(store tokenstore.Store, url string, opts ...SessionOption) *SessionController {
	tr := newTransport(url)
	opts = append([]SessionOption{WithSessionLogger(logger.Nop())}, opts...)
	return NewSessionController(store, NewAuthClient(tr, quietClient()), NewEmployeeClient(tr, quietClient()), opts...)
}

func TestSessionController_Scenario(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LoginPath:
			io.WriteString(w, `{"token":"abc123"}`)
		case EmployeesPath:
			if r.Header.Get("Authorization") != "Bearer abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			io.WriteString(w, `[{"employeeId":1,"firstName":"A","lastName":"B"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	store := tokenstore.NewMemory()
	s := newController(store, srv.URL)

	if s.State().IsAuthenticated() || s.View() != ViewLogin {
		t.Fatalf("initial state = %+v, view = %v", s.State(), s.View())
	}

	token, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q", token)
	}

	stored, ok, _ := store.Get(context.Background())
	if !ok || stored != "abc123" {
		t.Errorf("store holds %q, %v", stored, ok)
	}
	if st := s.State(); st != domain.AuthenticatedState("abc123") {
		t.Errorf("state = %+v", st)
	}
	if s.View() != ViewEmployees {
		t.Errorf("view = %v", s.View())
	}

	employees, err := s.LoadEmployees(context.Background())
	if err != nil {
		t.Fatalf("LoadEmployees() error = %v", err)
	}
	if len(employees) != 1 {
		t.Fatalf("len = %d, want 1", len(employees))
	}
	e := employees[0]
	if *e.EmployeeID != 1 || *e.FirstName != "A" || *e.LastName != "B" {
		t.Errorf("employee = %+v", e)
	}
}

func TestSessionController_PrepopulatedStore(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})

	s := newController(tokenstore.NewMemoryWith("stored-token"), srv.URL)

	if st := s.State(); st != domain.AuthenticatedState("stored-token") {
		t.Errorf("state = %+v", st)
	}
	if srv.hits.Load() != 0 {
		t.Errorf("construction made %d requests", srv.hits.Load())
	}
}

func TestSessionController_UnreadableStore(t *testing.T) {
	store := &failingStore{Memory: tokenstore.NewMemory(), getErr: domain.ErrStorage}
	s := NewSessionController(store, &stubAuth{}, nil, WithSessionLogger(logger.Nop()))

	if s.State().IsAuthenticated() {
		t.Error("unreadable store should start unauthenticated")
	}
}

func TestSessionController_LoadEmployees_NoToken(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newController(tokenstore.NewMemory(), srv.URL)

	_, err := s.LoadEmployees(context.Background())
	if !errors.Is(err, domain.ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}
	if domain.UserMessage(err) != domain.MsgNoToken {
		t.Errorf("UserMessage() = %q", domain.UserMessage(err))
	}
	if _, err := s.LoadEmployeeProfile(context.Background(), 1); !errors.Is(err, domain.ErrNoToken) {
		t.Errorf("profile error = %v, want ErrNoToken", err)
	}
	if srv.hits.Load() != 0 {
		t.Errorf("server received %d requests, want 0", srv.hits.Load())
	}
}

func TestSessionController_LoginFailureKeepsState(t *testing.T) {
	_, url := fakeapitest.Start(t, fakeapi.Config{RejectMessage: "Invalid credentials"})
	store := tokenstore.NewMemory()
	s := newController(store, url)

	_, err := s.Login(context.Background(), domain.Credentials{Username: "mazda", Password: "wrong"})
	if !errors.Is(err, domain.ErrAuthRejected) {
		t.Fatalf("error = %v, want ErrAuthRejected", err)
	}
	if domain.UserMessage(err) != "Invalid credentials" {
		t.Errorf("UserMessage() = %q", domain.UserMessage(err))
	}
	if s.State().IsAuthenticated() {
		t.Error("state changed after failed login")
	}
	if _, ok, _ := store.Get(context.Background()); ok {
		t.Error("store written after failed login")
	}
}

func TestSessionController_OnLoginSuccess_StoreFailure(t *testing.T) {
	s := NewSessionController(&failingStore{Memory: tokenstore.NewMemory()}, &stubAuth{}, nil, WithSessionLogger(logger.Nop()))

	err := s.OnLoginSuccess(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if s.State().IsAuthenticated() {
		t.Error("state must not change when the store write fails")
	}

	if err := s.OnLoginSuccess(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty token error = %v", err)
	}
}

func TestSessionController_Logout(t *testing.T) {
	store := tokenstore.NewMemoryWith("abc123")
	s := NewSessionController(store, &stubAuth{}, nil, WithSessionLogger(logger.Nop()))

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if s.State().IsAuthenticated() || s.View() != ViewLogin {
		t.Error("still authenticated after logout")
	}
	if _, ok, _ := store.Get(context.Background()); ok {
		t.Error("token still stored after logout")
	}
	if err := s.Logout(context.Background()); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestSessionController_Logout_StoreFailure(t *testing.T) {
	store := &failingStore{Memory: tokenstore.NewMemoryWith("abc123")}
	s := NewSessionController(store, &stubAuth{}, nil, WithSessionLogger(logger.Nop()))

	if err := s.Logout(context.Background()); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Logout() error = %v, want ErrStorage", err)
	}
	if s.State().IsAuthenticated() {
		t.Error("in-memory session should end even if the store fails")
	}
}

func TestSessionController_SubmitLogin_Cancel(t *testing.T) {
	_, url := fakeapitest.Start(t, fakeapi.Config{Latency: time.Minute})
	store := tokenstore.NewMemory()
	s := newController(store, url)

	task := s.SubmitLogin(context.Background(), domain.Credentials{Username: "mazda", Password: "Test1ng!"})

	// A second submission while the first is pending is refused.
	second := s.SubmitLogin(context.Background(), domain.Credentials{Username: "mazda", Password: "Test1ng!"})
	if _, err := second.Wait(); !errors.Is(err, domain.ErrOperationInFlight) {
		t.Errorf("second submit error = %v, want ErrOperationInFlight", err)
	}

	task.Cancel()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled login did not finish")
	}

	if _, err := task.Wait(); !errors.Is(err, domain.ErrCanceled) {
		t.Errorf("Wait() error = %v, want ErrCanceled", err)
	}
	if domain.UserMessage(domain.ErrCanceled) != domain.MsgCanceled {
		t.Error("canceled message mismatch")
	}
	if s.State().IsAuthenticated() {
		t.Error("cancelled login changed state")
	}

	// The guard is released once the task finishes.
	s2 := NewSessionController(tokenstore.NewMemory(), &stubAuth{token: "t1"}, nil, WithSessionLogger(logger.Nop()))
	for i := 0; i < 2; i++ {
		if _, err := s2.SubmitLogin(context.Background(), domain.Credentials{Username: "a", Password: "b"}).Wait(); err != nil {
			t.Errorf("submit %d error = %v", i, err)
		}
	}
}

func TestSessionController_StartLoadEmployees(t *testing.T) {
	api, url := fakeapitest.Start(t, fakeapi.Config{})
	token, _ := api.IssueToken(fakeapi.DefaultUsers()[0])
	s := newController(tokenstore.NewMemoryWith(domain.Token(token)), url)

	employees, err := s.StartLoadEmployees(context.Background()).Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(employees) != len(fakeapi.SampleEmployees()) {
		t.Errorf("len = %d", len(employees))
	}
}

func TestSessionController_StartLoadEmployees_InFlight(t *testing.T) {
	api, url := fakeapitest.Start(t, fakeapi.Config{Latency: time.Minute})
	token, _ := api.IssueToken(fakeapi.DefaultUsers()[0])
	s := newController(tokenstore.NewMemoryWith(domain.Token(token)), url)

	first := s.StartLoadEmployees(context.Background())
	defer first.Cancel()

	if _, err := s.StartLoadEmployees(context.Background()).Wait(); !errors.Is(err, domain.ErrOperationInFlight) {
		t.Errorf("error = %v, want ErrOperationInFlight", err)
	}

	first.Cancel()
	if _, err := first.Wait(); !errors.Is(err, domain.ErrCanceled) {
		t.Errorf("cancelled fetch error = %v, want ErrCanceled", err)
	}
}

func TestSessionController_ExpireOnUnauthorized(t *testing.T) {
	tests := []struct {
		name       string
		expire     bool
		wantAuthed bool
	}{
		{"disabled keeps session", false, true},
		{"enabled ends session", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, url := fakeapitest.Start(t, fakeapi.Config{})
			token, _ := api.IssueToken(fakeapi.DefaultUsers()[0])
			api.RotateSecret([]byte("rotated"))

			store := tokenstore.NewMemoryWith(domain.Token(token))
			s := newController(store, url, WithExpireOnUnauthorized(tt.expire))

			_, err := s.LoadEmployees(context.Background())
			if domain.HTTPStatusOf(err) != http.StatusUnauthorized {
				t.Fatalf("error = %v, want 401", err)
			}
			if got := s.State().IsAuthenticated(); got != tt.wantAuthed {
				t.Errorf("authenticated = %v, want %v", got, tt.wantAuthed)
			}
			if _, ok, _ := store.Get(context.Background()); ok != tt.wantAuthed {
				t.Errorf("stored = %v, want %v", ok, tt.wantAuthed)
			}
		})
	}
}

func TestSessionController_LoginThenFetchOrdering(t *testing.T) {
	api, url := fakeapitest.Start(t, fakeapi.Config{})
	s := newController(tokenstore.NewMemory(), url)

	task := s.SubmitLogin(context.Background(), domain.Credentials{Username: "benz", Password: "Test1ng!"})
	if _, err := task.Wait(); err != nil {
		t.Fatalf("login error = %v", err)
	}

	// Once the task reports success the fetch must see the new token.
	if _, err := s.LoadEmployees(context.Background()); err != nil {
		t.Fatalf("LoadEmployees() error = %v", err)
	}
	if api.LoginCalls() != 1 || api.EmployeeCalls() != 1 {
		t.Errorf("calls = %d login, %d employees", api.LoginCalls(), api.EmployeeCalls())
	}

	claims, err := s.Claims()
	if err != nil {
		t.Fatalf("Claims() error = %v", err)
	}
	if claims.Username != "benz" || claims.Role != "viewer" {
		t.Errorf("claims = %+v", claims)
	}
}
