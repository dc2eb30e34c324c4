// Package storage provides embedded key-value engines for the client's
// durable state.
//
// Two engines implement KVEngine:
//
//   - BadgerEngine: dgraph-io/badger/v3 directory store (default)
//   - SQLiteEngine: single-file store on mattn/go-sqlite3
//
// Open selects the engine from KVConfig.Engine.
package storage
