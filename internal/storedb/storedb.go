// Package storedb is the backing-store adapter: it owns the SQLite
// connection, applies pragmas and schema, caches prepared statements, and
// exposes deferred/immediate transactions plus named savepoints to the
// layers above. This is the one package in the module that knows it is
// sitting on top of SQLite; everything else only sees database/sql handles.
package storedb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/halvorsen/regtree/internal/regerr"
)

//go:embed schema.sql
var schemaSQL string

// busyTimeoutMillis is the backing store's lock-wait budget; see spec.md §5.
const busyTimeoutMillis = 15000

// DB owns the open database handle and the process-wide prepared-statement
// cache for it. It has no notion of the entry tree or transaction scopes —
// those live in internal/entries, internal/txn, and internal/tree.
type DB struct {
	sqlDB *sql.DB

	stmtMu sync.Mutex
	stmts  map[string]*sql.Stmt
}

// Open opens or creates a SQLite database file at path, applies the
// required pragmas, and creates the schema if absent. Idempotent: safe to
// call against an existing, already-initialized file.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMillis)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, regerr.Database(regerr.DatabaseError, "open", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, regerr.Database(regerr.DatabaseError, "open", err)
	}

	// SQLite supports a single writer; limiting the pool avoids
	// cross-connection SQLITE_BUSY contention within this process.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{sqlDB: sqlDB, stmts: make(map[string]*sql.Stmt)}

	if err := db.applyPragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.applySchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection and releases cached statements.
func (db *DB) Close() error {
	db.stmtMu.Lock()
	for _, stmt := range db.stmts {
		stmt.Close()
	}
	db.stmts = nil
	db.stmtMu.Unlock()
	return db.sqlDB.Close()
}

// Raw exposes the underlying *sql.DB for callers (internal/entries,
// internal/settings) that take a Querier. Prefer BeginDeferred/
// BeginImmediate for anything transactional.
func (db *DB) Raw() *sql.DB { return db.sqlDB }

func (db *DB) applyPragmas() error {
	pragmas := []string{
		"PRAGMA auto_vacuum = FULL",
		"PRAGMA synchronous = FULL",
		"PRAGMA foreign_keys = TRUE",
		"PRAGMA encoding = 'UTF-8'",
		"PRAGMA journal_mode = DELETE",
		"PRAGMA locking_mode = NORMAL",
		"PRAGMA recursive_triggers = TRUE",
		"PRAGMA secure_delete = TRUE",
	}
	for _, p := range pragmas {
		if _, err := db.sqlDB.Exec(p); err != nil {
			return regerr.Database(regerr.DatabaseError, "apply pragma "+p, err)
		}
	}
	return nil
}

func (db *DB) applySchema() error {
	if _, err := db.sqlDB.Exec(schemaSQL); err != nil {
		return regerr.Database(regerr.DatabaseError, "apply schema", err)
	}

	var rootCount int
	if err := db.sqlDB.QueryRow(`SELECT COUNT(1) FROM entries WHERE id = 0`).Scan(&rootCount); err != nil {
		return regerr.Database(regerr.InvalidQuery, "check root entry", err)
	}
	if rootCount == 0 {
		if _, err := db.sqlDB.Exec(`
			INSERT INTO entries (id, parent, revision, name, type, value)
			VALUES (0, 0, 0, '', 1, 0)
		`); err != nil {
			return regerr.Database(regerr.InvalidInsert, "insert root entry", err)
		}
	}
	return nil
}

// IntegrityCheck runs SQLite's own integrity and foreign-key checks.
func (db *DB) IntegrityCheck(ctx context.Context) error {
	var result string
	if err := db.sqlDB.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return regerr.Database(regerr.DatabaseError, "integrity check", err)
	}
	if result != "ok" {
		return regerr.Newf(regerr.DatabaseError, "integrity check failed: %s", result)
	}

	rows, err := db.sqlDB.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return regerr.Database(regerr.DatabaseError, "foreign key check", err)
	}
	defer rows.Close()
	if rows.Next() {
		return regerr.New(regerr.DatabaseError, "foreign key check reported violations")
	}
	return rows.Err()
}

// stmt returns the cached statement for query, preparing it against the
// plain connection pool on first use. The cache key is the SQL text, per
// spec.md §4.2. A statement prepared here is reusable both directly and,
// via Tx.StmtContext, rebound onto an active transaction's connection —
// that's what lets one process-wide cache serve both readers and writers.
func (db *DB) stmt(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtMu.Lock()
	cached, ok := db.stmts[query]
	db.stmtMu.Unlock()
	if ok {
		return cached, nil
	}

	prepared, err := db.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, regerr.Database(regerr.InvalidQuery, "prepare statement", err)
	}

	db.stmtMu.Lock()
	if cached, ok := db.stmts[query]; ok {
		db.stmtMu.Unlock()
		prepared.Close()
		return cached, nil
	}
	db.stmts[query] = prepared
	db.stmtMu.Unlock()
	return prepared, nil
}
