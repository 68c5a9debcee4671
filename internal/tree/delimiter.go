package tree

import (
	"context"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/names"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/settings"
	"github.com/halvorsen/regtree/internal/storedb"
)

// SetNewDelimiter changes the store's name delimiter to c. The change is
// rejected if any stored entry name already contains c, since that name
// would become unparsable under the new delimiter — see spec.md §4.5.
func (s *Store) SetNewDelimiter(ctx context.Context, c rune) error {
	return s.withWriter(ctx, func(ex *storedb.Executor) error {
		all, err := entries.AllNonRoot(ctx, ex)
		if err != nil {
			return err
		}
		for _, e := range all {
			if names.ContainsDelimiter(e.Name, c) {
				return regerr.Newf(regerr.InvalidDelimiter, "entry name already contains delimiter %q", string(c)).WithPath(e.Name)
			}
		}

		if err := settings.SetString(ctx, ex, settings.KeyNameDelimiter, string(c)); err != nil {
			return err
		}
		s.delim = c
		return nil
	})
}
