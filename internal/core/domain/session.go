package domain

import "strings"

// Token is the opaque credential issued by the login endpoint.
type Token string

// String returns the raw token value.
func (t Token) String() string {
	return string(t)
}

// IsZero reports whether the token is empty.
func (t Token) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// SessionStatus enumerates session states.
type SessionStatus int

const (
	// Unauthenticated means no token is held.
	Unauthenticated SessionStatus = iota
	// Authenticated means a token is held and will be presented on requests.
	Authenticated
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionState is the client's view of the session.
// Token is empty unless Status is Authenticated.
type SessionState struct {
	Status SessionStatus
	Token  Token
}

// UnauthenticatedState returns the state with no token.
func UnauthenticatedState() SessionState {
	return SessionState{Status: Unauthenticated}
}

// AuthenticatedState returns the state holding t.
func AuthenticatedState(t Token) SessionState {
	return SessionState{Status: Authenticated, Token: t}
}

// IsAuthenticated reports whether a token is held.
func (s SessionState) IsAuthenticated() bool {
	return s.Status == Authenticated
}
