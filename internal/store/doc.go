// Package store keeps rows of element types in SQLite and runs lowered
// queries against them.
//
// Each row table stores one element type: CreateTable derives one column
// per scalar field or property (queryir.Columns) and records the table in
// the dynq_tables catalog together with a fingerprint of its columns.
// Insert reads member values through the type's members and encodes them
// with querysql.Param; Query compiles a queryir.Select with querysql and
// decodes every column back to the runtime form of its binding type.
//
// # Ordering
//
// Every query ends its ORDER BY with rowid ASC, so rows with equal keys
// come back in insertion order, the same order the in-memory evaluator's
// stable sort keeps.
//
// # Connections
//
// A Store holds a single connection in WAL mode with a five second busy
// timeout. The catalog is versioned through PRAGMA user_version and
// migrated by Open.
package store
