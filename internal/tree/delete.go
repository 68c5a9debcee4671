package tree

import (
	"context"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/storedb"
)

// TryDelete removes name (and, if recursive, its whole subtree), returning
// false instead of raising an error when name does not exist or when it has
// children and recursive is false.
func (s *Store) TryDelete(ctx context.Context, name string, recursive bool) (bool, error) {
	var ok bool
	err := s.withWriter(ctx, func(ex *storedb.Executor) error {
		deleted, lookupErr := deleteCore(ctx, ex, name, recursive, s.delim)
		if regerr.Is(lookupErr, regerr.EntryNotFound) || regerr.Is(lookupErr, regerr.HasChildEntry) {
			ok = false
			return nil
		}
		if lookupErr != nil {
			return lookupErr
		}
		ok = deleted
		return nil
	})
	return ok, err
}

// Delete removes name (and, if recursive, its whole subtree), raising
// EntryNotFound or HasChildEntry instead of returning false.
func (s *Store) Delete(ctx context.Context, name string, recursive bool) error {
	return s.withWriter(ctx, func(ex *storedb.Executor) error {
		_, err := deleteCore(ctx, ex, name, recursive, s.delim)
		return err
	})
}

// deleteCore resolves name, checks for children, and performs the deletion
// plus revision propagation. Revision propagation bumps root and every
// ancestor of name; name itself (and anything beneath it) is gone and is
// not bumped, per spec.md §4.3.
func deleteCore(ctx context.Context, ex *storedb.Executor, name string, recursive bool, delim rune) (bool, error) {
	e, ids, err := getEntryWithDelim(ctx, ex, name, delim, false)
	if err != nil {
		return false, err
	}

	children, err := entries.Children(ctx, ex, e.ID)
	if err != nil {
		return false, err
	}

	if len(children) > 0 {
		if !recursive {
			return false, regerr.New(regerr.HasChildEntry, "entry has children").WithPath(name)
		}
		if err := deleteSubtree(ctx, ex, e.ID); err != nil {
			return false, err
		}
	}

	if err := entries.DeleteByID(ctx, ex, e.ID); err != nil {
		return false, err
	}
	// ids's last element is e.ID itself, which is now gone; only its
	// ancestors (plus root) get their revision bumped.
	if err := propagate(ctx, ex, withRoot(ids[:len(ids)-1])); err != nil {
		return false, err
	}
	return true, nil
}

// deleteSubtree removes every descendant of root (but not root itself)
// using an explicit work-list traversal rather than recursion, per
// spec.md §9. It collects ids in preorder (parents before children) and
// deletes in reverse, so every child is deleted before its parent — the
// order the FOREIGN KEY (parent) REFERENCES entries(id) constraint
// requires, and matches the "children enumerated fresh between levels"
// post-order contract from spec.md §4.3.
func deleteSubtree(ctx context.Context, ex *storedb.Executor, root int64) error {
	var order []int64
	stack := []int64{root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := entries.Children(ctx, ex, id)
		if err != nil {
			return err
		}
		for _, c := range children {
			order = append(order, c.ID)
			stack = append(stack, c.ID)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := entries.DeleteByID(ctx, ex, order[i]); err != nil {
			return err
		}
	}
	return nil
}
