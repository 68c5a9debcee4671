// Package tree implements the store's public surface: path resolution,
// auto-vivification, revision propagation, and every operation listed in
// spec.md §4.3.
package tree

import (
	"context"
	"os"

	"github.com/halvorsen/regtree/internal/names"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/settings"
	"github.com/halvorsen/regtree/internal/storedb"
	"github.com/halvorsen/regtree/internal/txn"
)

// Config controls how Open behaves.
type Config struct {
	// Create permits creating a new database file if path doesn't exist.
	Create bool

	// Delimiter is the name delimiter to use for a newly created store. It
	// is ignored (the stored delimiter wins) when opening an existing
	// store — see spec.md §4.5.
	Delimiter rune
}

// Store owns one open database handle, one prepared-statement cache
// (inside db), and one weak handle to the currently active transaction
// (inside txns). See spec.md §3 "Ownership".
type Store struct {
	db    *storedb.DB
	txns  *txn.Manager
	delim rune
}

// Open opens (or creates) a store at path per cfg.
func Open(ctx context.Context, path string, cfg Config) (*Store, error) {
	if !cfg.Create {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, regerr.Newf(regerr.InvalidConfiguration, "database %q does not exist and create was not requested", path)
		}
	}

	delim := cfg.Delimiter
	if delim == 0 {
		delim = names.DefaultDelimiter
	}

	db, err := storedb.Open(path)
	if err != nil {
		return nil, err
	}

	resolvedDelim, err := resolveConfiguration(ctx, db, delim)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, txns: txn.NewManager(db), delim: resolvedDelim}, nil
}

// Close releases the store's database handle. It must not be called while
// any Writer/Reader scope from this store is still open.
func (s *Store) Close() error {
	return s.db.Close()
}

// Delimiter returns the store's current name delimiter.
func (s *Store) Delimiter() rune { return s.delim }

// resolveConfiguration checks/writes schema version settings and resolves
// the effective delimiter, all inside one writer transaction, per
// spec.md §4.5 and §6.
func resolveConfiguration(ctx context.Context, db *storedb.DB, requestedDelim rune) (rune, error) {
	tx, err := db.BeginImmediate(ctx)
	if err != nil {
		return 0, err
	}
	ex := db.TxExecutor(tx)

	resolved, err := func() (rune, error) {
		majorExists, err := settings.Exists(ctx, ex, settings.KeyMajorVersion)
		if err != nil {
			return 0, err
		}
		minorExists, err := settings.Exists(ctx, ex, settings.KeyMinorVersion)
		if err != nil {
			return 0, err
		}

		switch {
		case !majorExists && !minorExists:
			if err := settings.SetInt(ctx, ex, settings.KeyMajorVersion, settings.CurrentMajorVersion); err != nil {
				return 0, err
			}
			if err := settings.SetInt(ctx, ex, settings.KeyMinorVersion, settings.CurrentMinorVersion); err != nil {
				return 0, err
			}
		case majorExists != minorExists:
			return 0, regerr.New(regerr.InvalidConfiguration, "partial version metadata: exactly one of MajorVersion/MinorVersion is set")
		default:
			major, err := settings.GetInt(ctx, ex, settings.KeyMajorVersion)
			if err != nil {
				return 0, err
			}
			if major > settings.CurrentMajorVersion {
				return 0, regerr.Newf(regerr.VersionNotSupported, "store major version %d exceeds supported version %d", major, settings.CurrentMajorVersion)
			}
		}

		delimExists, err := settings.Exists(ctx, ex, settings.KeyNameDelimiter)
		if err != nil {
			return 0, err
		}
		if !delimExists {
			if err := settings.SetString(ctx, ex, settings.KeyNameDelimiter, string(requestedDelim)); err != nil {
				return 0, err
			}
			return requestedDelim, nil
		}

		stored, err := settings.GetString(ctx, ex, settings.KeyNameDelimiter)
		if err != nil {
			return 0, err
		}
		runes := []rune(stored)
		if len(runes) != 1 {
			return 0, regerr.Newf(regerr.InvalidDelimiterSetting, "stored NameDelimiter %q is not a single character", stored)
		}
		return runes[0], nil
	}()
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, regerr.Database(regerr.DatabaseError, "commit configuration", err)
	}
	return resolved, nil
}

// withReader runs fn against a joined-or-fresh deferred transaction,
// closing the scope (always a rollback — reads never need to persist
// anything) once fn returns.
func (s *Store) withReader(ctx context.Context, fn func(ex *storedb.Executor) error) error {
	scope, err := s.txns.BeginReader(ctx)
	if err != nil {
		return err
	}
	defer scope.Close(ctx)
	return fn(scope.Executor())
}

// withWriter runs fn against a joined-or-fresh writeable transaction
// (promoted to a nested savepoint if a writer is already active),
// committing (or releasing the savepoint) on success and, on failure,
// rolling back the transaction (or rolling back to the savepoint).
func (s *Store) withWriter(ctx context.Context, fn func(ex *storedb.Executor) error) error {
	scope, err := s.txns.BeginWriter(ctx)
	if err != nil {
		return err
	}
	if err := fn(scope.Executor()); err != nil {
		scope.Close(ctx)
		return err
	}
	return scope.Commit(ctx)
}

// Writer is an explicit, caller-held writer scope. Holding one keeps the
// underlying transaction active across multiple Store calls, each of which
// transparently nests a savepoint under it — see spec.md §4.4 and the
// nested-writer scenarios in spec.md §8.
type Writer struct {
	scope *txn.Transaction
}

// BeginWriter opens an explicit writer scope. If the store is Idle this
// starts the outer immediate transaction; if a writer is already active
// (including one held by another caller-visible Writer), this opens a
// nested savepoint scope instead.
func (s *Store) BeginWriter(ctx context.Context) (*Writer, error) {
	scope, err := s.txns.BeginWriter(ctx)
	if err != nil {
		return nil, err
	}
	return &Writer{scope: scope}, nil
}

// Commit commits the outermost transaction, or releases this scope's
// savepoint if it is nested.
func (w *Writer) Commit(ctx context.Context) error { return w.scope.Commit(ctx) }

// Close rolls back this scope (or its savepoint) if it was not committed.
// Safe to call after Commit.
func (w *Writer) Close(ctx context.Context) error { return w.scope.Close(ctx) }

// Reader is an explicit, caller-held reader scope, analogous to Writer.
type Reader struct {
	scope *txn.Transaction
}

// BeginReader opens an explicit reader scope, joining any active
// transaction (reader or writer) or starting a fresh deferred one.
func (s *Store) BeginReader(ctx context.Context) (*Reader, error) {
	scope, err := s.txns.BeginReader(ctx)
	if err != nil {
		return nil, err
	}
	return &Reader{scope: scope}, nil
}

// Close releases this reader scope.
func (r *Reader) Close(ctx context.Context) error { return r.scope.Close(ctx) }
