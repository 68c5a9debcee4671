// Package names implements the store's dotted-path vocabulary: validating
// local names and full paths against the store's configurable delimiter,
// and splitting/joining paths into ordered segments.
//
// Validation is character-exact. No Unicode normalization or case folding is
// performed, by design — see spec.md §4.1.
package names

import (
	"strings"

	"github.com/halvorsen/regtree/internal/regerr"
)

// DefaultDelimiter is used when a store is created without specifying one.
const DefaultDelimiter = '.'

// IsValidName reports whether name is non-empty, does not begin or end with
// delim, and contains no two consecutive occurrences of delim.
func IsValidName(name string, delim rune) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	d := string(delim)
	if strings.HasPrefix(name, d) || strings.HasSuffix(name, d) {
		return false
	}
	prevWasDelim := false
	for _, r := range runes {
		if r == delim {
			if prevWasDelim {
				return false
			}
			prevWasDelim = true
		} else {
			prevWasDelim = false
		}
	}
	return true
}

// ParseName splits a valid name into its ordered, non-empty segments. The
// caller must have already validated name with IsValidName; ParseName
// returns InvalidName otherwise.
func ParseName(name string, delim rune) ([]string, error) {
	if !IsValidName(name, delim) {
		return nil, regerr.New(regerr.InvalidName, "not a valid name").WithPath(name)
	}
	segments := strings.Split(name, string(delim))
	return segments, nil
}

// PathToName joins segments back into a dotted name using delim.
func PathToName(segments []string, delim rune) string {
	return strings.Join(segments, string(delim))
}

// ContainsDelimiter reports whether s contains delim anywhere, used by
// SetNewDelimiter's safety check and by the consistency checker.
func ContainsDelimiter(s string, delim rune) bool {
	return strings.ContainsRune(s, delim)
}
