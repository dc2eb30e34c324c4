// Package service implements the client's session lifecycle and the
// authenticated fetch pipeline.
//
// This package contains:
//
//   - AuthClient: exchanges credentials for a token at POST /v2/login
//   - EmployeeClient: protected reads under GET /v2/employees
//   - SessionController: the Unauthenticated/Authenticated state machine
//     that owns the cached token and decides which view is shown
//   - Task: a cancellable handle for one in-flight operation
//
// Clients are stateless and safe for concurrent use. The controller
// serialises its own state transitions.
package service
