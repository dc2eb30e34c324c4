// Package tokenstore persists the single session token.
//
// Store is the abstraction the session controller depends on; KVStore
// keeps the token in a durable storage.KVEngine (optionally sealed with a
// passphrase), Memory keeps it in process for tests and ephemeral use.
package tokenstore
