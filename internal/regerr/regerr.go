// Package regerr defines the tagged error family surfaced by the registry
// tree to its callers.
package regerr

import (
	"errors"
	"fmt"
)

// Kind categorizes a registry error. Kinds are grouped by the spec section
// that names them: input validation, lookup, structure, transactions,
// configuration, backing store, and consistency.
type Kind string

const (
	// Input validation.
	InvalidName Kind = "INVALID_NAME"

	// Lookup.
	EntryNotFound   Kind = "ENTRY_NOT_FOUND"
	SettingNotFound Kind = "SETTING_NOT_FOUND"

	// Structure.
	NameAlreadyExists Kind = "NAME_ALREADY_EXISTS"
	HasChildEntry     Kind = "HAS_CHILD_ENTRY"
	WrongValueType    Kind = "WRONG_VALUE_TYPE"

	// Transactions.
	InvalidTransaction Kind = "INVALID_TRANSACTION"

	// Configuration.
	InvalidConfiguration    Kind = "INVALID_CONFIGURATION"
	InvalidDelimiterSetting Kind = "INVALID_DELIMITER_SETTING"
	VersionNotSupported     Kind = "VERSION_NOT_SUPPORTED"

	// Backing store.
	DatabaseError    Kind = "DATABASE_ERROR"
	InvalidQuery     Kind = "INVALID_QUERY"
	InvalidInsert    Kind = "INVALID_INSERT"
	InvalidDelimiter Kind = "INVALID_DELIMITER"

	// Consistency.
	InconsistentData       Kind = "INCONSISTENT_DATA"
	RootEntryMissing       Kind = "ROOT_ENTRY_MISSING"
	MultipleRootEntries    Kind = "MULTIPLE_ROOT_ENTRIES"
	InvalidRootEntry       Kind = "INVALID_ROOT_ENTRY"
	InvalidEntryNameFound  Kind = "INVALID_ENTRY_NAME_FOUND"
	EntryIdNotUnique       Kind = "ENTRY_ID_NOT_UNIQUE"
	AbandonedEntry         Kind = "ABANDONED_ENTRY"
	InvalidEntryLinking    Kind = "INVALID_ENTRY_LINKING"
	UnknownEntryType       Kind = "UNKNOWN_ENTRY_TYPE"
)

// Error is the single error type surfaced by this module. It carries a
// machine-readable Kind plus free-form diagnostic fields.
type Error struct {
	Kind    Kind
	Message string

	// Path is the dotted name the operation was given, when applicable.
	Path string

	// EntryID identifies the offending entry, when applicable.
	EntryID int64

	// Details holds extra diagnostic context (e.g. offending ids for a
	// consistency failure).
	Details map[string]string

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (path=%q): %v", e.Kind, e.Message, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%q)", e.Kind, e.Message, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err is a *Error with the given Kind.
func Is(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// WithEntryID returns a copy of e with EntryID set.
func (e *Error) WithEntryID(id int64) *Error {
	cp := *e
	cp.EntryID = id
	return &cp
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// NotFound builds an EntryNotFound error for the given path.
func NotFound(path string) *Error {
	return New(EntryNotFound, "entry not found").WithPath(path)
}

// AlreadyExists builds a NameAlreadyExists error for the given path.
func AlreadyExists(path string) *Error {
	return New(NameAlreadyExists, "entry already exists").WithPath(path)
}

// WrongType builds a WrongValueType error for the given path.
func WrongType(path string, want, got string) *Error {
	return Newf(WrongValueType, "expected %s, entry is %s", want, got).WithPath(path)
}

// Database wraps a backing-store failure.
func Database(kind Kind, op string, cause error) *Error {
	return Newf(kind, "backing store failure during %s", op).Wrap(cause)
}

// Consistency builds an InconsistentData error of the given specialization.
func Consistency(kind Kind, message string, details map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}
