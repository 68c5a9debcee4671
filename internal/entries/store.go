package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/textcodec"
)

// Querier is satisfied by both *sql.DB and *sql.Tx. Every method in this
// package takes one explicitly rather than hiding it behind package state,
// so the tree engine controls exactly which handle (plain connection or an
// active transaction/savepoint) a given call runs against.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// valueParam converts a Value into the driver parameter bound for the
// Entries.value column. An empty BlobValue binds as NULL, per spec.md §3.
func valueParam(v Value) (any, error) {
	switch val := v.(type) {
	case IntegerValue:
		return int64(val), nil
	case TextValue:
		b, err := textcodec.ToStorage(string(val))
		if err != nil {
			return nil, err
		}
		return b, nil
	case BlobValue:
		if len(val) == 0 {
			return nil, nil
		}
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("entries: unhandled value variant %T", v)
	}
}

// scanValue reconstructs a Value from the type tag and raw column value
// returned by the driver.
func scanValue(tag Type, raw any) (Value, error) {
	switch tag {
	case TypeInteger:
		switch n := raw.(type) {
		case int64:
			return IntegerValue(n), nil
		case nil:
			return IntegerValue(0), nil
		default:
			return nil, fmt.Errorf("entries: integer column held %T", raw)
		}
	case TypeText:
		switch s := raw.(type) {
		case string:
			text, err := textcodec.FromStorage([]byte(s))
			if err != nil {
				return nil, err
			}
			return TextValue(text), nil
		case []byte:
			text, err := textcodec.FromStorage(s)
			if err != nil {
				return nil, err
			}
			return TextValue(text), nil
		case nil:
			return TextValue(""), nil
		default:
			return nil, fmt.Errorf("entries: text column held %T", raw)
		}
	case TypeBlob:
		switch b := raw.(type) {
		case []byte:
			cp := make([]byte, len(b))
			copy(cp, b)
			return BlobValue(cp), nil
		case nil:
			return BlobValue(nil), nil
		default:
			return nil, fmt.Errorf("entries: blob column held %T", raw)
		}
	default:
		return nil, regerr.Newf(regerr.UnknownEntryType, "unrecognized type tag %d", int64(tag))
	}
}

// Insert creates a new row and returns its assigned id.
func Insert(ctx context.Context, q Querier, parentID int64, name string, v Value, revision int64) (int64, error) {
	param, err := valueParam(v)
	if err != nil {
		return 0, regerr.Database(regerr.InvalidInsert, "insert entry", err)
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO entries (parent, name, type, value, revision)
		VALUES (?, ?, ?, ?, ?)
	`, parentID, name, int64(v.Type()), param, revision)
	if err != nil {
		return 0, regerr.Database(regerr.InvalidInsert, "insert entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, regerr.Database(regerr.InvalidInsert, "insert entry", err)
	}
	return id, nil
}

// UpdateValue replaces the type+value of an existing entry, leaving its
// name, parent, and revision untouched.
func UpdateValue(ctx context.Context, q Querier, id int64, v Value) error {
	param, err := valueParam(v)
	if err != nil {
		return regerr.Database(regerr.InvalidQuery, "update entry value", err)
	}
	_, err = q.ExecContext(ctx, `
		UPDATE entries SET type = ?, value = ? WHERE id = ?
	`, int64(v.Type()), param, id)
	if err != nil {
		return regerr.Database(regerr.InvalidQuery, "update entry value", err)
	}
	return nil
}

// SetRevision overwrites an entry's revision column directly; used by the
// revision propagator.
func SetRevision(ctx context.Context, q Querier, id, revision int64) error {
	_, err := q.ExecContext(ctx, `UPDATE entries SET revision = ? WHERE id = ?`, revision, id)
	if err != nil {
		return regerr.Database(regerr.InvalidQuery, "bump revision", err)
	}
	return nil
}

const selectColumns = `id, parent, name, type, value, revision`

func scanRow(row interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id, parent, revision int64
		name                 string
		typeTag              int64
		raw                  any
	)
	if err := row.Scan(&id, &parent, &name, &typeTag, &raw, &revision); err != nil {
		return Entry{}, err
	}
	val, err := scanValue(Type(typeTag), raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, ParentID: parent, Name: name, Revision: revision, Value: val}, nil
}

// ByID fetches a single entry by id.
func ByID(ctx context.Context, q Querier, id int64) (Entry, bool, error) {
	row := q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanRow(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, regerr.Database(regerr.InvalidQuery, "select entry by id", err)
	}
	return e, true, nil
}

// ByParentAndName resolves a single (parent_id, name) pair to its entry, the
// unique index spec.md §3 requires.
func ByParentAndName(ctx context.Context, q Querier, parentID int64, name string) (Entry, bool, error) {
	row := q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM entries WHERE parent = ? AND name = ?`, parentID, name)
	e, err := scanRow(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, regerr.Database(regerr.InvalidQuery, "select entry by parent+name", err)
	}
	return e, true, nil
}

// Children returns the immediate children of parentID in the backing
// store's natural row order.
func Children(ctx context.Context, q Querier, parentID int64) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+selectColumns+` FROM entries WHERE parent = ? AND id != parent`, parentID)
	if err != nil {
		return nil, regerr.Database(regerr.InvalidQuery, "select children", err)
	}
	defer rows.Close()

	children := []Entry{}
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, regerr.Database(regerr.InvalidQuery, "scan child row", err)
		}
		children = append(children, e)
	}
	if err := rows.Err(); err != nil {
		return nil, regerr.Database(regerr.InvalidQuery, "iterate children", err)
	}
	return children, nil
}

// HasChild reports whether parentID has at least one child, without
// materializing the full row set.
func HasChild(ctx context.Context, q Querier, parentID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM entries WHERE parent = ? AND id != parent`, parentID).Scan(&count)
	if err != nil {
		return false, regerr.Database(regerr.InvalidQuery, "count children", err)
	}
	return count > 0, nil
}

// DeleteByID removes a single row. Callers are responsible for ordering
// deletes bottom-up for recursive subtree removal.
func DeleteByID(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return regerr.Database(regerr.InvalidQuery, "delete entry", err)
	}
	return nil
}

// AllNonRoot returns every entry except the root, in id order, for use by
// the consistency checker.
func AllNonRoot(ctx context.Context, q Querier) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+selectColumns+` FROM entries WHERE id != 0 ORDER BY id ASC`)
	if err != nil {
		return nil, regerr.Database(regerr.InvalidQuery, "select all entries", err)
	}
	defer rows.Close()

	var all []Entry
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, regerr.Database(regerr.InvalidQuery, "scan entry row", err)
		}
		all = append(all, e)
	}
	if err := rows.Err(); err != nil {
		return nil, regerr.Database(regerr.InvalidQuery, "iterate entries", err)
	}
	return all, nil
}
