// Package store provides the SQLite journal of a scorekeeping session.
//
// The journal is append-only and holds two tables:
//   - matches: one row per match, with the rules it started under
//   - events: every dispatched event, accepted or not, with the state it
//     produced and that state's hash
//
// The journal is an audit trail. It feeds the trace and replay commands
// and is never used to resume a match.
//
// # Ordering
//
// All ordering uses the logical seq column, never timestamps. Every read
// orders by seq ASC, id ASC COLLATE BINARY so that replays see identical
// results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema is managed by goose migrations embedded in the binary. The
// default path ":memory:" keeps the journal for the life of the process.
package store
