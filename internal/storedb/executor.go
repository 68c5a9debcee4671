package storedb

import (
	"context"
	"database/sql"
	"errors"
)

// errNotCached makes a transaction-bound Executor run a query directly on
// its transaction instead of through the statement cache.
var errNotCached = errors.New("storedb: statement not cached")

// Executor runs queries against either the plain connection pool or an
// active transaction. Outside a transaction every query goes through the
// process-wide statement cache; inside one, statements already cached are
// rebound onto the transaction and any other query runs on the transaction
// directly. It satisfies entries.Querier and settings.Querier without either
// package importing database/sql transaction types directly.
type Executor struct {
	db *DB
	tx *sql.Tx // nil when running outside a transaction
}

// Executor returns the non-transactional executor: every call goes straight
// to the connection pool. internal/txn hands out transaction-bound
// executors instead once a reader or writer scope is open.
func (db *DB) Executor() *Executor {
	return &Executor{db: db}
}

// TxExecutor wraps an active transaction so callers use the same cached
// statements a non-transactional Executor would.
func (db *DB) TxExecutor(tx *sql.Tx) *Executor {
	return &Executor{db: db, tx: tx}
}

func (e *Executor) resolve(ctx context.Context, query string) (*sql.Stmt, error) {
	if e.tx == nil {
		return e.db.stmt(ctx, query)
	}
	// The pool has a single connection, held by the transaction until it
	// ends, so preparing through the pool here would wait forever.
	e.db.stmtMu.Lock()
	base, ok := e.db.stmts[query]
	e.db.stmtMu.Unlock()
	if !ok {
		return nil, errNotCached
	}
	return e.tx.StmtContext(ctx, base), nil
}

func (e *Executor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	stmt, err := e.resolve(ctx, query)
	if err != nil {
		if e.tx != nil {
			return e.tx.ExecContext(ctx, query, args...)
		}
		return e.db.sqlDB.ExecContext(ctx, query, args...)
	}
	return stmt.ExecContext(ctx, args...)
}

func (e *Executor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := e.resolve(ctx, query)
	if err != nil {
		if e.tx != nil {
			return e.tx.QueryContext(ctx, query, args...)
		}
		return e.db.sqlDB.QueryContext(ctx, query, args...)
	}
	return stmt.QueryContext(ctx, args...)
}

func (e *Executor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	stmt, err := e.resolve(ctx, query)
	if err != nil {
		if e.tx != nil {
			return e.tx.QueryRowContext(ctx, query, args...)
		}
		return e.db.sqlDB.QueryRowContext(ctx, query, args...)
	}
	return stmt.QueryRowContext(ctx, args...)
}
