package tree

import (
	"context"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/storedb"
)

// resolvePath walks segments left-to-right under parent, looking up
// (parent, name) in the unique index at each step.
//
// It returns the id chain for however many segments matched. A full match
// has len(ids) == len(segments); a partial match has len(ids) < len(segments)
// and stops at the first unresolved segment. "Nothing matched" is the
// len(ids) == 0 case — callers distinguish these the same way spec.md §4.3
// describes ResolvePath doing.
func resolvePath(ctx context.Context, ex *storedb.Executor, parent int64, segments []string) ([]int64, error) {
	ids := make([]int64, 0, len(segments))
	current := parent
	for _, seg := range segments {
		e, found, err := entries.ByParentAndName(ctx, ex, current, seg)
		if err != nil {
			return ids, err
		}
		if !found {
			return ids, nil
		}
		ids = append(ids, e.ID)
		current = e.ID
	}
	return ids, nil
}

// withRoot prepends the root id to ids, the implicit first member of every
// revision-propagation chain.
func withRoot(ids []int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	out = append(out, entries.RootID)
	out = append(out, ids...)
	return out
}
