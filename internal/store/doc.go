// Package store provides the SQLite execution backend for compiled queries.
//
// Store implements query.Compiler: each compilation resolves the query
// model into a queryir.Select, validates it, renders it with the SQLite
// dialect of querysql, and returns a statement that can be listed or
// asked for a unique result.
//
// # Critical Patterns
//
// All values are parameterized, never interpolated. A statement is a
// single unit of work: backend errors are returned unchanged in kind and
// nothing is retried.
//
// Lock modes: SQLite has no row locks. A statement compiled with a read or
// write lock runs inside a transaction, and the database is opened with
// immediate transactions, so the whole database is reserved for the
// duration of the read. That transaction commits before List returns, so
// the reservation ends with the read. To keep it while acting on the rows,
// compile against the Tx passed to Store.InTx.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for locks (default 5 seconds)
//   - foreign_keys=ON: Enforce referential integrity
//   - case_sensitive_like=ON: LIKE matches case, ILIKE folds it
package store
