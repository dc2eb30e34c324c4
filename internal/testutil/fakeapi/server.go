package fakeapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
	"github.com/kubecloudsinc/kci-client/pkg/token"
)

// User is an account accepted by the login endpoint.
type User struct {
	Username string
	Password string
	Role     string
}

// Claims are the JWT claims issued on login.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Config configures a Server. Zero values get defaults from New.
type Config struct {
	// Secret signs issued tokens. Default: a fixed development key.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Default: 15m.
	TokenTTL time.Duration
	// Users accepted by login. Default: DefaultUsers().
	Users []User
	// Employees returned by the list endpoint. Default: SampleEmployees().
	Employees []domain.Employee
	// Profiles returned by the profile endpoint, by employee id.
	Profiles map[int]*domain.EmployeeProfile
	// RejectMessage, when set, is sent as {"message"} with a failed login.
	RejectMessage string
	// Latency delays every API response. The delay ends early when the
	// client goes away.
	Latency time.Duration
	// Logger receives audit logs. Default: discard.
	Logger *slog.Logger
	// Metrics records server-side request counts. Default: a private registry.
	Metrics *metric.Registry
}

// Server is the fake API.
type Server struct {
	cfg     Config
	router  *mux.Router
	handler http.Handler

	mu     sync.RWMutex
	secret []byte

	loginCalls    atomic.Int64
	employeeCalls atomic.Int64
}

// DefaultUsers returns the development accounts.
func DefaultUsers() []User {
	return []User{
		{Username: "mazda", Password: "Test1ng!", Role: "admin"},
		{Username: "honda", Password: "Test1ng!", Role: "editor"},
		{Username: "benz", Password: "Test1ng!", Role: "viewer"},
	}
}

// New creates a Server.
func New(cfg Config) *Server {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("kci-fakeapi-development-key")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
	if cfg.Users == nil {
		cfg.Users = DefaultUsers()
	}
	if cfg.Employees == nil {
		cfg.Employees = SampleEmployees()
	}
	if cfg.Profiles == nil {
		cfg.Profiles = SampleProfiles()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		secret: cfg.Secret,
	}
	s.registerRoutes()
	s.handler = Chain(s.router,
		RequestID(),
		Recover(cfg.Logger),
		Audit(cfg.Logger),
	)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	auth := BearerAuth(s.key)

	s.router.HandleFunc("/v2/login", s.handleLogin).Methods(http.MethodPost)
	s.router.Handle("/v2/employees", auth(http.HandlerFunc(s.handleListEmployees))).Methods(http.MethodGet)
	s.router.Handle("/v2/employee/{employeeId:[0-9]+}", auth(http.HandlerFunc(s.handleGetEmployee))).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.cfg.Metrics.Handler()).Methods(http.MethodGet)
}

// LoginCalls returns how many login requests were received.
func (s *Server) LoginCalls() int64 {
	return s.loginCalls.Load()
}

// EmployeeCalls returns how many employee requests were received.
func (s *Server) EmployeeCalls() int64 {
	return s.employeeCalls.Load()
}

// RotateSecret changes the signing key, invalidating every issued token.
func (s *Server) RotateSecret(secret []byte) {
	s.mu.Lock()
	s.secret = secret
	s.mu.Unlock()
}

func (s *Server) key() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret
}

// IssueToken signs a token for user, as a successful login would.
func (s *Server) IssueToken(u User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key())
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)
	start := time.Now()
	var err error
	defer func() { s.cfg.Metrics.ObserveRequest(metric.OpServerLogin, start, err) }()

	if !s.delay(r) {
		return
	}

	var creds domain.Credentials
	if err = json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	user, ok := s.lookup(creds)
	if !ok {
		err = domain.ErrAuthRejected
		if s.cfg.RejectMessage != "" {
			writeError(w, http.StatusUnauthorized, s.cfg.RejectMessage)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	signed, err := s.IssueToken(user)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.cfg.Logger.Info("user authenticated", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	s.employeeCalls.Add(1)
	start := time.Now()
	defer s.cfg.Metrics.ObserveRequest(metric.OpServerEmployees, start, nil)

	if !s.delay(r) {
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Employees)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	s.employeeCalls.Add(1)
	start := time.Now()
	defer s.cfg.Metrics.ObserveRequest(metric.OpServerEmployees, start, nil)

	if !s.delay(r) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["employeeId"])
	if err != nil {
		http.Error(w, "invalid employee id", http.StatusBadRequest)
		return
	}
	profile, ok := s.cfg.Profiles[id]
	if !ok {
		http.Error(w, "Employee not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) lookup(creds domain.Credentials) (User, bool) {
	for _, u := range s.cfg.Users {
		if u.Username == creds.Username && token.Equal(u.Password, creds.Password) {
			return u, true
		}
	}
	return User{}, false
}

// delay waits for the configured latency. It returns false when the
// client went away first.
func (s *Server) delay(r *http.Request) bool {
	if s.cfg.Latency <= 0 {
		return true
	}
	t := time.NewTimer(s.cfg.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
