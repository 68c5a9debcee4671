package tree

import (
	"context"
	"strconv"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/storedb"
)

// bumpRevision reads id's current revision and writes current+1.
func bumpRevision(ctx context.Context, ex *storedb.Executor, id int64) error {
	e, ok, err := entries.ByID(ctx, ex, id)
	if err != nil {
		return err
	}
	if !ok {
		return regerr.Consistency(regerr.AbandonedEntry, "revision propagation reached a missing ancestor", map[string]string{"id": strconv.FormatInt(id, 10)})
	}
	return entries.SetRevision(ctx, ex, id, e.Revision+1)
}

// propagate bumps the revision of every id in order. Callers build ids with
// withRoot so the root is always included.
func propagate(ctx context.Context, ex *storedb.Executor, ids []int64) error {
	for _, id := range ids {
		if err := bumpRevision(ctx, ex, id); err != nil {
			return err
		}
	}
	return nil
}
