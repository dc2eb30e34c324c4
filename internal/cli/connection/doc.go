// Package connection provides the HTTP transport to the employee API.
//
// HTTPClient normalises the server address, attaches the bearer token,
// user agent and a per-request X-Request-ID, optionally rate limits
// outgoing requests, and logs each exchange at debug level. Decoding and
// error classification belong to the callers in core/service.
package connection
