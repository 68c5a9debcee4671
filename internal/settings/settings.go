// Package settings implements the small typed key/value Settings table:
// schema version and the active name delimiter.
package settings

import (
	"context"
	"database/sql"

	"github.com/halvorsen/regtree/internal/regerr"
)

// Recognized setting keys.
const (
	KeyMajorVersion  = "MajorVersion"
	KeyMinorVersion  = "MinorVersion"
	KeyNameDelimiter = "NameDelimiter"
)

// CurrentMajorVersion and CurrentMinorVersion are written to a freshly
// created store and checked against on open.
const (
	CurrentMajorVersion int64 = 1
	CurrentMinorVersion int64 = 0
)

// Querier is satisfied by both *sql.DB and a transaction executor.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetString reads a text-valued setting. Returns regerr.SettingNotFound if
// absent.
func GetString(ctx context.Context, q Querier, name string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", regerr.New(regerr.SettingNotFound, "setting not found").WithPath(name)
	}
	if err != nil {
		return "", regerr.Database(regerr.InvalidQuery, "read setting", err)
	}
	return value, nil
}

// GetInt reads an integer-valued setting. Returns regerr.SettingNotFound if
// absent.
func GetInt(ctx context.Context, q Querier, name string) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, regerr.New(regerr.SettingNotFound, "setting not found").WithPath(name)
	}
	if err != nil {
		return 0, regerr.Database(regerr.InvalidQuery, "read setting", err)
	}
	return value, nil
}

// SetString writes (or overwrites) a text-valued setting.
func SetString(ctx context.Context, q Querier, name, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return regerr.Database(regerr.InvalidInsert, "write setting", err)
	}
	return nil
}

// SetInt writes (or overwrites) an integer-valued setting.
func SetInt(ctx context.Context, q Querier, name string, value int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return regerr.Database(regerr.InvalidInsert, "write setting", err)
	}
	return nil
}

// Exists reports whether a setting row is present at all.
func Exists(ctx context.Context, q Querier, name string) (bool, error) {
	var count int
	row := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM settings WHERE name = ?`, name)
	if err := row.Scan(&count); err != nil {
		return false, regerr.Database(regerr.InvalidQuery, "check setting", err)
	}
	return count > 0, nil
}
