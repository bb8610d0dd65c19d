// Package storage persists flow diagrams.
//
// A [Gateway] turns a [flow.Snapshot] into a timestamped JSON [Document] and
// writes it to a [Store] under a single well-known key ([DefaultKey]). Each
// save overwrites the previous one.
//
// # Backends
//
// [Open] selects a backend by name:
//
//   - file: one JSON file per key, written atomically (CLI default)
//   - memory: process-local map
//   - sqlite: kv table in a local database (modernc.org/sqlite, no cgo)
//   - redis: plain string keys (go-redis)
//   - postgres: flow_kv table through a pgx pool
//
// Network-backed stores wrap transient failures with [Retryable], which the
// gateway retries via [RetryWithBackoff].
//
// # Loading
//
// [Gateway.Load] treats a missing snapshot and an undecodable one the same
// way: as absence. Only backend failures surface as errors.
package storage
