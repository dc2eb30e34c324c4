package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

// TokenClaims is the informational content of a session token.
//
// The signature is NOT verified; the client has no key. Use for display
// only.
type TokenClaims struct {
	Username  string    `json:"username" yaml:"username"`
	Role      string    `json:"role,omitempty" yaml:"role,omitempty"`
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero" yaml:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry before now.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// jwtClaims mirrors the claims issued by the API.
type jwtClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes t as a JWT without verifying it. Opaque tokens
// return an error.
func ParseClaims(t domain.Token) (*TokenClaims, error) {
	var claims jwtClaims
	if _, _, err := jwt.NewParser().ParseUnverified(t.String(), &claims); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	out := &TokenClaims{
		Username: claims.Username,
		Role:     claims.Role,
		Subject:  claims.Subject,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
