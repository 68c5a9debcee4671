// Package consistency implements the store's read-only data consistency
// scan: name validity, id uniqueness, and reachability from the root.
package consistency

import (
	"context"
	"strconv"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/names"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/storedb"
)

// Check scans every non-root entry and verifies, in order:
//  1. no local name contains delim;
//  2. every id appears exactly once;
//  3. every id is reachable from the root by exactly one path through
//     parent links.
//
// It fails fast on the first violation found, per spec.md §9's note that
// fail-fast uniqueness detection is an acceptable reading of the reference
// behavior.
func Check(ctx context.Context, db *storedb.DB, delim rune) error {
	ex := db.Executor()

	all, err := entries.AllNonRoot(ctx, ex)
	if err != nil {
		return err
	}

	for _, e := range all {
		if names.ContainsDelimiter(e.Name, delim) {
			return regerr.Consistency(regerr.InvalidEntryNameFound, "entry name contains the active delimiter",
				map[string]string{"id": strconv.FormatInt(e.ID, 10), "name": e.Name})
		}
	}

	seen := make(map[int64]bool, len(all))
	byID := make(map[int64]entries.Entry, len(all))
	childrenOf := make(map[int64][]int64, len(all))
	for _, e := range all {
		if seen[e.ID] {
			return regerr.Consistency(regerr.EntryIdNotUnique, "entry id appears more than once",
				map[string]string{"id": strconv.FormatInt(e.ID, 10)})
		}
		seen[e.ID] = true
		byID[e.ID] = e
		childrenOf[e.ParentID] = append(childrenOf[e.ParentID], e.ID)
	}

	visited := make(map[int64]bool, len(all))
	stack := []int64{entries.RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range childrenOf[id] {
			if visited[child] {
				return regerr.Consistency(regerr.InvalidEntryLinking, "entry reached more than once during reachability descent",
					map[string]string{"id": strconv.FormatInt(child, 10)})
			}
			visited[child] = true
			stack = append(stack, child)
		}
	}

	for _, e := range all {
		if !visited[e.ID] {
			return regerr.Consistency(regerr.AbandonedEntry, "entry is not reachable from the root",
				map[string]string{"id": strconv.FormatInt(e.ID, 10)})
		}
	}

	return nil
}

// Repair performs no corrective action and reports zero entries moved. Any
// richer behavior — e.g. reparenting abandoned entries under the root — is
// left as a future extension; see spec.md §9.
func Repair(ctx context.Context, db *storedb.DB, delim rune) (int, error) {
	return 0, nil
}
