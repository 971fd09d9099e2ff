// Package store provides SQLite-backed storage for parse runs.
//
// A run records one parse of one trace:
//   - runs: identity, source path, trace and tree hashes, summary stats
//   - nodes: the call tree in arena order (node_id, parent_id, name)
//   - diagnostics: non-fatal anomalies in the order they were reported
//
// # Identity
//
// Run IDs are UUIDv7 strings from an IDGenerator, so they sort by creation
// time. The trace hash identifies the raw input and the tree hash the
// reconstructed shape; both use canonical JSON and SHA-256 with domain
// separation (see internal/canonical).
//
// # Ordering
//
// Listings order by seq, a logical counter assigned when a run is
// written, never by wall time. Nodes are read ORDER BY node_id: children
// always have larger IDs than their parents and siblings are numbered in
// creation order, so parent links and child order are rebuilt exactly.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
