package storedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/halvorsen/regtree/internal/regerr"
)

// BeginDeferred starts a read transaction. SQLite acquires its read lock
// lazily, matching "deferred" in spec.md's glossary.
func (db *DB) BeginDeferred(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.sqlDB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, regerr.Database(regerr.DatabaseError, "begin deferred transaction", err)
	}
	return tx, nil
}

// BeginImmediate starts a write transaction. go-sqlite3 maps a non-read-only
// BeginTx to BEGIN IMMEDIATE, acquiring the write lock eagerly, matching
// "immediate" in spec.md's glossary.
func (db *DB) BeginImmediate(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, regerr.Database(regerr.DatabaseError, "begin immediate transaction", err)
	}
	return tx, nil
}

// SetSavepoint creates a new named savepoint inside tx.
func SetSavepoint(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("SAVEPOINT %s", quoteIdent(name)))
	if err != nil {
		return regerr.Database(regerr.DatabaseError, "set savepoint", err)
	}
	return nil
}

// ReleaseSavepoint keeps the changes made since SetSavepoint(name).
func ReleaseSavepoint(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", quoteIdent(name)))
	if err != nil {
		return regerr.Database(regerr.DatabaseError, "release savepoint", err)
	}
	return nil
}

// RollbackSavepoint discards the changes made since SetSavepoint(name).
func RollbackSavepoint(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", quoteIdent(name)))
	if err != nil {
		return regerr.Database(regerr.DatabaseError, "rollback savepoint", err)
	}
	return nil
}

// quoteIdent wraps a savepoint name in double quotes. Savepoint names in
// this module are always generator-produced (see internal/txn), never
// user-supplied, but quoting keeps the adapter honest about identifiers
// versus values.
func quoteIdent(name string) string {
	return `"` + name + `"`
}
