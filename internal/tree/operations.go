package tree

import (
	"context"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/names"
	"github.com/halvorsen/regtree/internal/regerr"
	"github.com/halvorsen/regtree/internal/storedb"
)

// getEntry resolves name to its full id chain and loads the terminal entry.
// allowRoot permits the empty name to mean the root entry itself.
func (s *Store) getEntry(ctx context.Context, ex *storedb.Executor, name string, allowRoot bool) (entries.Entry, []int64, error) {
	return getEntryWithDelim(ctx, ex, name, s.delim, allowRoot)
}

// getEntryWithDelim is getEntry's delimiter-parameterized core, usable by
// call sites (like deleteCore) that only have the delimiter, not a *Store.
func getEntryWithDelim(ctx context.Context, ex *storedb.Executor, name string, delim rune, allowRoot bool) (entries.Entry, []int64, error) {
	if name == "" {
		if allowRoot {
			root, _, err := entries.ByID(ctx, ex, entries.RootID)
			return root, nil, err
		}
		return entries.Entry{}, nil, regerr.New(regerr.InvalidName, "name must not be empty").WithPath(name)
	}

	segments, err := names.ParseName(name, delim)
	if err != nil {
		return entries.Entry{}, nil, regerr.New(regerr.InvalidName, "parse name").Wrap(err).WithPath(name)
	}

	ids, err := resolvePath(ctx, ex, entries.RootID, segments)
	if err != nil {
		return entries.Entry{}, nil, err
	}
	if len(ids) != len(segments) {
		return entries.Entry{}, ids, regerr.NotFound(name)
	}

	e, found, err := entries.ByID(ctx, ex, ids[len(ids)-1])
	if err != nil {
		return entries.Entry{}, ids, err
	}
	if !found {
		return entries.Entry{}, ids, regerr.Consistency(regerr.AbandonedEntry, "resolved id vanished mid-lookup", map[string]string{"name": name})
	}
	return e, ids, nil
}

// Exists reports whether name resolves to an entry.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		_, _, err := s.getEntry(ctx, ex, name, true)
		if regerr.Is(err, regerr.EntryNotFound) {
			return nil
		}
		exists = err == nil
		return err
	})
	if regerr.Is(err, regerr.EntryNotFound) {
		return false, nil
	}
	return exists, err
}

// GetType returns the value type currently stored at name.
func (s *Store) GetType(ctx context.Context, name string) (entries.Type, error) {
	var t entries.Type
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		e, _, err := s.getEntry(ctx, ex, name, true)
		if err != nil {
			return err
		}
		t = e.Value.Type()
		return nil
	})
	return t, err
}

// IsInteger reports whether name holds an Integer value.
func (s *Store) IsInteger(ctx context.Context, name string) (bool, error) {
	t, err := s.GetType(ctx, name)
	return t == entries.TypeInteger, err
}

// IsString reports whether name holds a Text value.
func (s *Store) IsString(ctx context.Context, name string) (bool, error) {
	t, err := s.GetType(ctx, name)
	return t == entries.TypeText, err
}

// IsBinary reports whether name holds a Blob value.
func (s *Store) IsBinary(ctx context.Context, name string) (bool, error) {
	t, err := s.GetType(ctx, name)
	return t == entries.TypeBlob, err
}

// GetRevision returns name's current revision stamp.
func (s *Store) GetRevision(ctx context.Context, name string) (int64, error) {
	var rev int64
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		e, _, err := s.getEntry(ctx, ex, name, true)
		if err != nil {
			return err
		}
		rev = e.Revision
		return nil
	})
	return rev, err
}

// HasChild reports whether name has at least one direct child.
func (s *Store) HasChild(ctx context.Context, name string) (bool, error) {
	var has bool
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		e, _, err := s.getEntry(ctx, ex, name, true)
		if err != nil {
			return err
		}
		has, err = entries.HasChild(ctx, ex, e.ID)
		return err
	})
	return has, err
}

// GetChildren returns the direct child names of name, in no particular
// order.
func (s *Store) GetChildren(ctx context.Context, name string) ([]string, error) {
	var out []string
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		e, _, err := s.getEntry(ctx, ex, name, true)
		if err != nil {
			return err
		}
		children, err := entries.Children(ctx, ex, e.ID)
		if err != nil {
			return err
		}
		out = make([]string, len(children))
		for i, c := range children {
			out[i] = c.Name
		}
		return nil
	})
	return out, err
}

// Create auto-vivifies every missing ancestor of name and inserts a fresh
// terminal entry holding value, failing if name already exists.
//
// Revision propagation per spec.md §4.3: the root and every pre-existing
// ancestor are bumped; any newly-vivified ancestor gets a random revision
// at insert time instead (it has no prior revision to bump from); the
// newly-inserted terminal also gets a random revision rather than a bump.
func (s *Store) Create(ctx context.Context, name string, value entries.Value) error {
	return s.withWriter(ctx, func(ex *storedb.Executor) error {
		return s.create(ctx, ex, name, value)
	})
}

func (s *Store) create(ctx context.Context, ex *storedb.Executor, name string, value entries.Value) error {
	segments, err := names.ParseName(name, s.delim)
	if err != nil {
		return regerr.New(regerr.InvalidName, "parse name").Wrap(err).WithPath(name)
	}

	resolved, err := resolvePath(ctx, ex, entries.RootID, segments)
	if err != nil {
		return err
	}
	if len(resolved) == len(segments) {
		return regerr.AlreadyExists(name)
	}

	bumpIDs := withRoot(resolved)

	parent := entries.RootID
	if len(resolved) > 0 {
		parent = resolved[len(resolved)-1]
	}

	missing := segments[len(resolved):]
	for i, seg := range missing {
		v := entries.DefaultValue()
		if i == len(missing)-1 {
			v = value
		}
		id, err := entries.Insert(ctx, ex, parent, seg, v, entries.RandomRevision())
		if err != nil {
			return err
		}
		parent = id
	}

	return propagate(ctx, ex, bumpIDs)
}

// Set overwrites the value at an existing entry, bumping its revision and
// every ancestor's (including root) per spec.md §4.3. It fails if name does
// not resolve to an entry.
func (s *Store) Set(ctx context.Context, name string, value entries.Value) error {
	return s.withWriter(ctx, func(ex *storedb.Executor) error {
		return s.set(ctx, ex, name, value)
	})
}

func (s *Store) set(ctx context.Context, ex *storedb.Executor, name string, value entries.Value) error {
	e, ids, err := s.getEntry(ctx, ex, name, false)
	if err != nil {
		return err
	}
	if err := entries.UpdateValue(ctx, ex, e.ID, value); err != nil {
		return err
	}
	return propagate(ctx, ex, withRoot(ids))
}

// SetOrCreate sets name's value if it exists, or creates it (and any
// missing ancestors) otherwise.
func (s *Store) SetOrCreate(ctx context.Context, name string, value entries.Value) error {
	return s.withWriter(ctx, func(ex *storedb.Executor) error {
		segments, err := names.ParseName(name, s.delim)
		if err != nil {
			return regerr.New(regerr.InvalidName, "parse name").Wrap(err).WithPath(name)
		}
		resolved, err := resolvePath(ctx, ex, entries.RootID, segments)
		if err != nil {
			return err
		}
		if len(resolved) == len(segments) {
			return s.set(ctx, ex, name, value)
		}
		return s.create(ctx, ex, name, value)
	})
}

func (s *Store) getTyped(ctx context.Context, name string, want entries.Type) (entries.Value, error) {
	var v entries.Value
	err := s.withReader(ctx, func(ex *storedb.Executor) error {
		e, _, err := s.getEntry(ctx, ex, name, false)
		if err != nil {
			return err
		}
		if e.Value.Type() != want {
			return regerr.WrongType(name, want.String(), e.Value.Type().String())
		}
		v = e.Value
		return nil
	})
	return v, err
}

// GetInteger returns the Integer value stored at name.
func (s *Store) GetInteger(ctx context.Context, name string) (int64, error) {
	v, err := s.getTyped(ctx, name, entries.TypeInteger)
	if err != nil {
		return 0, err
	}
	return int64(v.(entries.IntegerValue)), nil
}

// GetString returns the Text value stored at name.
func (s *Store) GetString(ctx context.Context, name string) (string, error) {
	v, err := s.getTyped(ctx, name, entries.TypeText)
	if err != nil {
		return "", err
	}
	return string(v.(entries.TextValue)), nil
}

// GetBinary returns the Blob value stored at name.
func (s *Store) GetBinary(ctx context.Context, name string) ([]byte, error) {
	v, err := s.getTyped(ctx, name, entries.TypeBlob)
	if err != nil {
		return nil, err
	}
	return []byte(v.(entries.BlobValue)), nil
}
