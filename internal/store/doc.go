// Package store is the SQLite journal of instruction edits.
//
// Every run of the compositor opens a session identified by a UUIDv7.
// Each successful console mutation is appended as one row per edit,
// keyed by (session, seq). The payload is the canonical JSON of the edit
// and the hash column its domain-separated SHA-256, checked on read.
// Replaying a session's edits in seq order rebuilds the instruction list
// exactly, pruning included.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
