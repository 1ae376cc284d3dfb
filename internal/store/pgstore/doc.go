// Package pgstore executes compiled queries against PostgreSQL through a
// pgx connection pool.
//
// It is the Postgres counterpart of package store: the same resolved
// statement tree is rendered with the Postgres dialect ($n placeholders,
// ILIKE, native ALL/ANY and FOR SHARE / FOR UPDATE row locks).
//
// A locked statement compiled against the Store runs in its own
// transaction, so its row locks are released when List returns. Compile
// against the Tx passed to Store.InTx to hold them while acting on the
// rows.
package pgstore
