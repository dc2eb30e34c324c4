// Package fakeapi is an in-process implementation of the KubeCloudsInc
// employee API used by tests and by the kci-fakeapi command.
//
// Routes:
//
//	POST /v2/login                    {"username","password"} -> {"token"}
//	GET  /v2/employees                Bearer JWT -> []Employee
//	GET  /v2/employee/{employeeId}    Bearer JWT -> EmployeeProfile
//	GET  /metrics                     Prometheus exposition
//
// Tokens are HS256 JWTs carrying username and role, like the real API.
// Failed logins answer with a bare status unless RejectMessage is set.
package fakeapi
