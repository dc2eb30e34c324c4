package domain

import (
	"log/slog"
	"strings"
)

// Credentials is a username/password pair submitted to the login endpoint.
// It is never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both fields are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrInvalidArgument.WithDetails("username is required")
	}
	if c.Password == "" {
		return ErrInvalidArgument.WithDetails("password is required")
	}
	return nil
}

// LogValue keeps the password out of log output.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("username", c.Username))
}
