// Package textcodec is the boundary converter between the registry's
// internal Unicode text type and the backing store's byte-oriented text
// column. It is intentionally thin: per spec.md §1 the encoding converter is
// an external collaborator, not part of the core.
package textcodec

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// bomStripper strips a leading UTF-8 byte-order mark, if present, since a
// BOM surviving into a stored name or value would otherwise compare unequal
// to the same text entered without one.
var bomStripper = unicode.BOMOverride(unicode.UTF8.NewDecoder())

// ToStorage converts a Go string to the UTF-8 byte form persisted in the
// backing store's TEXT column.
func ToStorage(s string) ([]byte, error) {
	out, _, err := transform.String(bomStripper, s)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// FromStorage converts bytes read back from the backing store's TEXT column
// into a Go string.
func FromStorage(b []byte) (string, error) {
	out, _, err := transform.String(bomStripper, string(b))
	if err != nil {
		return "", err
	}
	return out, nil
}

// Valid reports whether s survives the storage round trip without the
// codec returning an error (it may still strip a leading BOM).
func Valid(s string) bool {
	_, err := ToStorage(s)
	return err == nil
}
