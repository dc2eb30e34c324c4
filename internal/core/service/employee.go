package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/cli/connection"
	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/telemetry/metric"
)

// Protected endpoints.
const (
	EmployeesPath = "/v2/employees"
	EmployeePath  = "/v2/employee/%d"
)

// EmployeeClient performs protected reads with a bearer token.
// Nothing is retried.
type EmployeeClient struct {
	transport Transport
	opts      clientOptions
}

// NewEmployeeClient creates a new EmployeeClient.
func NewEmployeeClient(t Transport, opts ...ClientOption) *EmployeeClient {
	return &EmployeeClient{
		transport: t,
		opts:      newClientOptions(opts),
	}
}

// ListEmployees fetches the employee list.
//
// Errors:
//   - ErrNoToken: token is empty (no request is sent)
//   - ErrCanceled: ctx was cancelled
//   - ErrFetchTransport: no response
//   - ErrFetchHTTPStatus: non-2xx, status available via domain.HTTPStatusOf
//   - ErrFetchMalformedResponse: 2xx body is not a JSON array of employees
func (c *EmployeeClient) ListEmployees(ctx context.Context, token domain.Token) (employees []domain.Employee, err error) {
	start := time.Now()
	defer func() { c.opts.metrics.ObserveRequest(metric.OpListEmployees, start, err) }()

	if err := c.get(ctx, token, EmployeesPath, &employees); err != nil {
		return nil, err
	}
	if employees == nil {
		// JSON null
		return nil, domain.ErrFetchMalformedResponse.WithDetails("expected an array")
	}
	return employees, nil
}

// GetEmployeeProfile fetches one employee's profile with job details.
// Errors are classified as in ListEmployees.
func (c *EmployeeClient) GetEmployeeProfile(ctx context.Context, token domain.Token, id int) (profile *domain.EmployeeProfile, err error) {
	start := time.Now()
	defer func() { c.opts.metrics.ObserveRequest(metric.OpGetEmployee, start, err) }()

	if err := c.get(ctx, token, fmt.Sprintf(EmployeePath, id), &profile); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrFetchMalformedResponse.WithDetails("expected an object")
	}
	return profile, nil
}

// get issues an authenticated GET and decodes a 2xx body into target.
func (c *EmployeeClient) get(ctx context.Context, token domain.Token, path string, target any) error {
	if token.IsZero() {
		return domain.ErrNoToken
	}

	resp, err := c.transport.Get(ctx, path, token)
	if err != nil {
		if cerr := canceled(ctx, err); cerr != nil {
			return cerr
		}
		return domain.ErrFetchTransport.WithCause(err)
	}

	if !connection.IsSuccess(resp) {
		connection.Discard(resp)
		c.opts.logger.Debug("fetch failed", "path", path, "status", resp.StatusCode)
		return domain.ErrFetchHTTPStatus.
			WithStatus(resp.StatusCode).
			WithDetails(fmt.Sprintf("%s returned %d", path, resp.StatusCode))
	}

	if err := connection.DecodeJSON(resp, target); err != nil {
		if cerr := canceled(ctx, err); cerr != nil {
			return cerr
		}
		return domain.ErrFetchMalformedResponse.WithCause(err)
	}
	return nil
}
