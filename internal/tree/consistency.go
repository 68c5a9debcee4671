package tree

import (
	"context"

	"github.com/halvorsen/regtree/internal/consistency"
)

// CheckDataConsistency runs a read-only scan verifying name validity, id
// uniqueness, and reachability from the root, per spec.md §4.6.
func (s *Store) CheckDataConsistency(ctx context.Context) error {
	return consistency.Check(ctx, s.db, s.delim)
}

// RepairDataConsistency is a writeable stub; it performs no repair and
// always reports zero entries moved, per spec.md §9.
func (s *Store) RepairDataConsistency(ctx context.Context) (int, error) {
	return consistency.Repair(ctx, s.db, s.delim)
}
