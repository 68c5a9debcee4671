// Package entries models the persistent Entry row and its typed Value, and
// owns the Entries table's SQL.
package entries

import "math/rand/v2"

// Type is the on-disk type tag. Wire values match spec.md §4.3 exactly:
// Integer=1, Text=2, Blob=3. A row carrying any other tag is rejected by
// the caller with regerr.UnknownEntryType.
type Type int64

const (
	TypeInteger Type = 1
	TypeText    Type = 2
	TypeBlob    Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeText:
		return "Text"
	case TypeBlob:
		return "Blob"
	default:
		return "Unknown"
	}
}

// Value is a sealed tagged variant over the three value shapes an Entry can
// hold. Only IntegerValue, TextValue, and BlobValue implement it — mirrors
// the sealed-interface pattern used for the teacher's IR value types.
type Value interface {
	value()
	Type() Type
}

// IntegerValue holds a signed 64-bit integer.
type IntegerValue int64

func (IntegerValue) value()     {}
func (IntegerValue) Type() Type { return TypeInteger }

// TextValue holds Unicode text, stored UTF-8 in the backing column.
type TextValue string

func (TextValue) value()     {}
func (TextValue) Type() Type { return TypeText }

// BlobValue holds an arbitrary byte sequence. An empty BlobValue is stored
// as the backing-store NULL; readers detect NULL and return an empty slice.
type BlobValue []byte

func (BlobValue) value()     {}
func (BlobValue) Type() Type { return TypeBlob }

// DefaultValue is the payload auto-vivified intermediate entries receive:
// (Integer, 0).
func DefaultValue() Value { return IntegerValue(0) }

// RandomRevision draws a revision stamp uniformly across the full signed
// 64-bit range, per spec.md §4.3: a deleted-and-recreated entry then almost
// certainly produces an observably different {id, revision} pair.
func RandomRevision() int64 {
	return int64(rand.Uint64())
}
