package service

import (
	"context"
	"strings"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/cli/connection"
	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
)

// LoginPath is the login endpoint.
const LoginPath = "/v2/login"

// AuthClient exchanges credentials for a token. It never touches the
// token store.
type AuthClient struct {
	transport Transport
	opts      clientOptions
}

// NewAuthClient creates a new AuthClient.
func NewAuthClient(t Transport, opts ...ClientOption) *AuthClient {
	return &AuthClient{
		transport: t,
		opts:      newClientOptions(opts),
	}
}

// loginResponse is the 2xx login body.
type loginResponse struct {
	Token *string `json:"token"`
}

// Login posts creds to the login endpoint and returns the issued token.
//
// Errors:
//   - ErrInvalidArgument: empty username or password (no request is sent)
//   - ErrCanceled: ctx was cancelled
//   - ErrAuthTransport: no response (network failure, timeout)
//   - ErrAuthRejected: non-2xx; Details holds the server message if any
//   - ErrAuthMalformedResponse: 2xx without a non-empty string token
func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (token domain.Token, err error) {
	start := time.Now()
	defer func() { c.opts.metrics.ObserveRequest(metric.OpLogin, start, err) }()

	// 1. Validate input
	if err := creds.Validate(); err != nil {
		return "", err
	}

	// 2. Send request
	resp, err := c.transport.Post(ctx, LoginPath, creds)
	if err != nil {
		if cerr := canceled(ctx, err); cerr != nil {
			return "", cerr
		}
		return "", domain.ErrAuthTransport.WithCause(err)
	}

	// 3. Classify non-2xx
	if !connection.IsSuccess(resp) {
		rejected := domain.ErrAuthRejected.WithStatus(resp.StatusCode)
		if msg := connection.ErrorMessage(resp); msg != "" {
			rejected = rejected.WithDetails(msg)
		}
		c.opts.logger.Debug("login rejected", "status", resp.StatusCode, "username", creds.Username)
		return "", rejected
	}

	// 4. Parse token
	var body loginResponse
	if err := connection.DecodeJSON(resp, &body); err != nil {
		if cerr := canceled(ctx, err); cerr != nil {
			return "", cerr
		}
		return "", domain.ErrAuthMalformedResponse.WithCause(err)
	}
	if body.Token == nil || strings.TrimSpace(*body.Token) == "" {
		return "", domain.ErrAuthMalformedResponse.WithDetails("missing token")
	}

	c.opts.logger.Debug("login succeeded", "username", creds.Username)
	return domain.Token(*body.Token), nil
}
