// Package journal provides SQLite-backed durable storage for the update
// audit log.
//
// The journal is append-only and records:
//   - Requests: one row per applied request, with its final state
//   - Operations: one row per committed operation, with its counters and
//     delta hash
//
// # Ordering
//
// All ordering uses the seq column (a logical clock), never timestamps.
// Every read orders by seq ASC with a binary-collated tiebreak, so two
// journals written by the same sequence of requests read back identically.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING. Writing the same request or operation
// twice leaves the first row in place.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package journal
