package cli

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/halvorsen/regtree/internal/entries"
)

// parseValue builds an entries.Value from a --type flag and raw string
// argument. Blob input is expected base64-encoded.
func parseValue(typ, raw string) (entries.Value, error) {
	switch typ {
	case "int", "integer":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse integer value: %w", err)
		}
		return entries.IntegerValue(n), nil
	case "text", "string", "":
		return entries.TextValue(raw), nil
	case "blob", "binary":
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse blob value (expected base64): %w", err)
		}
		return entries.BlobValue(b), nil
	default:
		return nil, fmt.Errorf("unrecognized type %q: want int, text, or blob", typ)
	}
}
