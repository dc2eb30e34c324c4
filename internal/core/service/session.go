package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/storage/tokenstore"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/logger"
	"github.com/kubecloudsinc/kci-client/pkg/token"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Token, error)
}

// EmployeeSource performs protected employee reads.
type EmployeeSource interface {
	ListEmployees(ctx context.Context, token domain.Token) ([]domain.Employee, error)
	GetEmployeeProfile(ctx context.Context, token domain.Token, id int) (*domain.EmployeeProfile, error)
}

// View is what the presentation layer shows for a session state.
type View int

const (
	// ViewLogin is the login form.
	ViewLogin View = iota
	// ViewEmployees is the protected employee list.
	ViewEmployees
)

// String returns the view name.
func (v View) String() string {
	if v == ViewEmployees {
		return "employees"
	}
	return "login"
}

// SessionOption configures a SessionController.
type SessionOption func(*SessionController)

// WithExpireOnUnauthorized makes a 401 from a protected read clear the
// stored token and return the session to Unauthenticated.
func WithExpireOnUnauthorized(enabled bool) SessionOption {
	return func(s *SessionController) {
		s.expireOnUnauthorized = enabled
	}
}

// WithSessionLogger sets the controller logger.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(s *SessionController) {
		s.logger = l
	}
}

// SessionController owns the session state machine.
//
// State transitions (store write first, then the in-memory state):
//
//	Unauthenticated --login ok--> Authenticated
//	Authenticated   --logout----> Unauthenticated
//	Authenticated   --401 (opt)-> Unauthenticated
//
// The stored token is trusted as-is at start; nothing is validated until a
// protected read is made with it.
type SessionController struct {
	store     tokenstore.Store
	auth      Authenticator
	employees EmployeeSource
	logger    logger.Logger

	expireOnUnauthorized bool

	mu    sync.RWMutex
	state domain.SessionState

	// transitions serialises store writes with the state change that
	// follows them.
	transitions sync.Mutex

	loginInFlight atomic.Bool
	listInFlight  atomic.Bool
}

// NewSessionController reads the store once to decide the initial state.
// No network request is made. A failing store read counts as absence.
func NewSessionController(store tokenstore.Store, auth Authenticator, employees EmployeeSource, opts ...SessionOption) *SessionController {
	s := &SessionController{
		store:     store,
		auth:      auth,
		employees: employees,
		logger:    logger.Default(),
		state:     domain.UnauthenticatedState(),
	}
	for _, opt := range opts {
		opt(s)
	}

	tok, ok, err := store.Get(context.Background())
	switch {
	case err != nil:
		s.logger.Warn("token store unreadable, starting unauthenticated", "error", err)
	case ok && !tok.IsZero():
		s.state = domain.AuthenticatedState(tok)
	}
	return s
}

// State returns a snapshot of the session state.
func (s *SessionController) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// View returns the view for the current state.
func (s *SessionController) View() View {
	if s.State().IsAuthenticated() {
		return ViewEmployees
	}
	return ViewLogin
}

// ============================================================================
// Login
// ============================================================================

// OnLoginSuccess persists token and moves to Authenticated, in that order.
// If the store write fails the state is unchanged.
func (s *SessionController) OnLoginSuccess(ctx context.Context, tok domain.Token) error {
	if tok.IsZero() {
		return domain.ErrInvalidArgument.WithDetails("empty token")
	}

	s.transitions.Lock()
	defer s.transitions.Unlock()

	if err := s.store.Set(ctx, tok); err != nil {
		return err
	}

	s.setState(domain.AuthenticatedState(tok))
	s.logger.Info("session authenticated", "fingerprint", token.Fingerprint(string(tok)))
	return nil
}

// Login authenticates and, on success, completes OnLoginSuccess before
// returning. A failed login leaves the state unchanged.
func (s *SessionController) Login(ctx context.Context, creds domain.Credentials) (domain.Token, error) {
	tok, err := s.auth.Login(ctx, creds)
	if err != nil {
		return "", err
	}

	// Cancelled after the response arrived: drop the token.
	if errors.Is(ctx.Err(), context.Canceled) {
		return "", domain.ErrCanceled.WithCause(ctx.Err())
	}

	if err := s.OnLoginSuccess(ctx, tok); err != nil {
		return "", err
	}
	return tok, nil
}

// SubmitLogin starts Login in the background. Only one login may be in
// flight; a second submission completes immediately with
// ErrOperationInFlight.
func (s *SessionController) SubmitLogin(ctx context.Context, creds domain.Credentials) *Task[domain.Token] {
	if !s.loginInFlight.CompareAndSwap(false, true) {
		return failedTask[domain.Token](domain.ErrOperationInFlight.WithDetails("login"))
	}
	return startTask(ctx, func(ctx context.Context) (domain.Token, error) {
		return s.Login(ctx, creds)
	}, func() { s.loginInFlight.Store(false) })
}

// ============================================================================
// Logout
// ============================================================================

// Logout clears the stored token and moves to Unauthenticated. The
// in-memory session ends even if the store cannot be cleared; that error
// is returned.
func (s *SessionController) Logout(ctx context.Context) error {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	err := s.store.Clear(ctx)
	s.setState(domain.UnauthenticatedState())
	if err != nil {
		s.logger.Warn("token store clear failed", "error", err)
		return err
	}
	s.logger.Info("session ended")
	return nil
}

// ============================================================================
// Protected reads
// ============================================================================

// LoadEmployees lists employees with the cached token. Unauthenticated
// sessions fail with ErrNoToken without a request.
func (s *SessionController) LoadEmployees(ctx context.Context) ([]domain.Employee, error) {
	tok, err := s.currentToken()
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListEmployees(ctx, tok)
	if err != nil {
		s.maybeExpire(ctx, tok, err)
		return nil, err
	}
	return employees, nil
}

// StartLoadEmployees runs LoadEmployees in the background. Only one list
// fetch may be in flight.
func (s *SessionController) StartLoadEmployees(ctx context.Context) *Task[[]domain.Employee] {
	if !s.listInFlight.CompareAndSwap(false, true) {
		return failedTask[[]domain.Employee](domain.ErrOperationInFlight.WithDetails("list employees"))
	}
	return startTask(ctx, s.LoadEmployees, func() { s.listInFlight.Store(false) })
}

// LoadEmployeeProfile fetches one profile with the cached token.
func (s *SessionController) LoadEmployeeProfile(ctx context.Context, id int) (*domain.EmployeeProfile, error) {
	tok, err := s.currentToken()
	if err != nil {
		return nil, err
	}

	profile, err := s.employees.GetEmployeeProfile(ctx, tok, id)
	if err != nil {
		s.maybeExpire(ctx, tok, err)
		return nil, err
	}
	return profile, nil
}

// Claims decodes the cached token for display. It never changes state.
func (s *SessionController) Claims() (*TokenClaims, error) {
	tok, err := s.currentToken()
	if err != nil {
		return nil, err
	}
	return ParseClaims(tok)
}

// currentToken returns the cached token or ErrNoToken.
func (s *SessionController) currentToken() (domain.Token, error) {
	st := s.State()
	if !st.IsAuthenticated() || st.Token.IsZero() {
		return "", domain.ErrNoToken
	}
	return st.Token, nil
}

// maybeExpire ends the session after a 401 when enabled. A token replaced
// by a newer login in the meantime is left alone.
func (s *SessionController) maybeExpire(ctx context.Context, used domain.Token, err error) {
	if !s.expireOnUnauthorized || domain.HTTPStatusOf(err) != http.StatusUnauthorized {
		return
	}

	s.transitions.Lock()
	defer s.transitions.Unlock()

	if s.State().Token != used {
		return
	}
	if cerr := s.store.Clear(context.WithoutCancel(ctx)); cerr != nil {
		s.logger.Warn("token store clear failed", "error", cerr)
	}
	s.setState(domain.UnauthenticatedState())
	s.logger.Info("session expired by server")
}

func (s *SessionController) setState(st domain.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
