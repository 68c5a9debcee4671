// Package txn implements the transaction manager described in spec.md §4.4:
// the one-active-transaction-per-store rule, promotion of nested writers
// into named savepoints, and commit/rollback on scope exit.
//
// A Manager is not safe for concurrent use by multiple goroutines — per
// spec.md §5 the store is single-threaded per instance, and callers that
// want concurrent access create one instance (and one Manager) per thread.
package txn

import (
	"context"
	"database/sql"
	"weak"

	"github.com/google/uuid"

	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/storedb"
)

// Kind distinguishes a reader scope from a writer scope.
type Kind int

const (
	Reader Kind = iota
	Writer
)

// Manager owns the store's weak handle to whichever Transaction is
// currently active, per spec.md's "Ownership" note in §3.
type Manager struct {
	db      *storedb.DB
	current weak.Pointer[Transaction]
}

// NewManager returns a Manager with no active transaction (Idle state).
func NewManager(db *storedb.DB) *Manager {
	return &Manager{db: db}
}

// Transaction is the shared state behind one or more open scopes: either the
// single deferred reader transaction, or the single immediate writer
// transaction together with whichever nested savepoint scopes are currently
// open atop it.
type Transaction struct {
	mgr    *Manager
	kind   Kind
	tx     *sql.Tx
	ex     *storedb.Executor
	parent *Transaction // non-nil for a nested writer (savepoint) scope
	name   string        // savepoint name; "" for the outermost scope
	refs   int           // open scopes sharing this exact Transaction object
	closed bool
}

// Executor returns the statement-cache-backed executor operations in this
// transaction should use.
func (t *Transaction) Executor() *storedb.Executor { return t.ex }

// IsWriter reports whether this scope can perform writes.
func (t *Transaction) IsWriter() bool { return t.kind == Writer }

func newSavepointName() string {
	return "sp_" + uuid.Must(uuid.NewV7()).String()
}

// BeginReader joins the currently active transaction if one exists (a
// reader joining a reader, or a reader request made while a writer is
// active — permitted per spec.md §4.4 since the writer already implies read
// capability), or opens a fresh deferred transaction if the store is Idle.
func (m *Manager) BeginReader(ctx context.Context) (*Transaction, error) {
	if existing := m.current.Value(); existing != nil {
		existing.refs++
		return existing, nil
	}

	tx, err := m.db.BeginDeferred(ctx)
	if err != nil {
		return nil, err
	}
	t := &Transaction{mgr: m, kind: Reader, tx: tx, ex: m.db.TxExecutor(tx), refs: 1}
	m.current = weak.Make(t)
	return t, nil
}

// BeginWriter either starts the outermost writer transaction (Idle → Writer)
// or, if a writer is already active, opens a new nested savepoint scope
// atop it. A writer request while a reader is active fails with
// InvalidTransaction per spec.md §4.4.
func (m *Manager) BeginWriter(ctx context.Context) (*Transaction, error) {
	existing := m.current.Value()
	if existing == nil {
		tx, err := m.db.BeginImmediate(ctx)
		if err != nil {
			return nil, err
		}
		t := &Transaction{mgr: m, kind: Writer, tx: tx, ex: m.db.TxExecutor(tx), refs: 1}
		m.current = weak.Make(t)
		return t, nil
	}

	if existing.kind == Reader {
		return nil, regerr.New(regerr.InvalidTransaction, "writer requested while a reader transaction is active")
	}

	name := newSavepointName()
	if err := storedb.SetSavepoint(ctx, existing.tx, name); err != nil {
		return nil, err
	}
	nested := &Transaction{
		mgr:    m,
		kind:   Writer,
		tx:     existing.tx,
		ex:     m.db.TxExecutor(existing.tx),
		parent: existing,
		name:   name,
		refs:   1,
	}
	return nested, nil
}

// Commit commits the outermost writer's underlying transaction, releases a
// nested writer's savepoint, or — for a reader — releases this scope's
// share of the underlying read transaction, committing it once the last
// sharing scope commits.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return regerr.New(regerr.InvalidTransaction, "transaction scope already closed")
	}
	t.closed = true

	if t.parent != nil {
		return storedb.ReleaseSavepoint(ctx, t.tx, t.name)
	}

	t.refs--
	if t.refs > 0 {
		return nil
	}
	t.mgr.clear(t)
	if err := t.tx.Commit(); err != nil {
		return regerr.Database(regerr.DatabaseError, "commit transaction", err)
	}
	return nil
}

// Close exits the scope without an explicit commit: a nested writer's
// savepoint is rolled back; the last scope sharing the outermost
// transaction rolls that transaction back too. Close after a successful
// Commit is a harmless no-op.
func (t *Transaction) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true

	if t.parent != nil {
		return storedb.RollbackSavepoint(ctx, t.tx, t.name)
	}

	t.refs--
	if t.refs > 0 {
		return nil
	}
	t.mgr.clear(t)
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return regerr.Database(regerr.DatabaseError, "rollback transaction", err)
	}
	return nil
}

// clear drops the manager's handle to t once t (the outermost scope for its
// transaction) has no more open scopes, so the next Begin* call starts
// fresh instead of finding a closed Transaction still reachable through the
// weak pointer.
func (m *Manager) clear(t *Transaction) {
	if m.current.Value() == t {
		m.current = weak.Pointer[Transaction]{}
	}
}
