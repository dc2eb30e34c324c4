// Package domain defines the core domain models for the KubeCloudsInc client.
//
// Domain models are plain values without IO dependencies:
//
//   - Credentials: username/password pair submitted to the login endpoint
//   - Token / SessionState: the client's belief about authentication
//   - Employee / EmployeeProfile: protected resources returned by the API
//   - Errors: structured error codes and user-visible messages
package domain
