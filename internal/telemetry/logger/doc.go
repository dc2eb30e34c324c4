// Package logger provides structured logging for the KubeCloudsInc client.
//
// It wraps the standard library log/slog with a small Logger interface,
// a process-wide dynamic level, request ID propagation through
// context.Context, and redaction of credentials (passwords, bearer
// tokens, JWTs) before anything reaches the output.
package logger
