package tree

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/regerr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path, Config{Create: true})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAutoVivifyAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a.b.c", entries.TextValue("value")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	for _, name := range []string{"a", "a.b"} {
		exists, err := s.Exists(ctx, name)
		if err != nil || !exists {
			t.Fatalf("Exists(%q) = %v, %v, want true, nil", name, exists, err)
		}
		isInt, err := s.IsInteger(ctx, name)
		if err != nil || !isInt {
			t.Fatalf("IsInteger(%q) = %v, %v, want true, nil", name, isInt, err)
		}
		v, err := s.GetInteger(ctx, name)
		if err != nil || v != 0 {
			t.Fatalf("GetInteger(%q) = %v, %v, want 0, nil", name, v, err)
		}
	}

	isStr, err := s.IsString(ctx, "a.b.c")
	if err != nil || !isStr {
		t.Fatalf("IsString(a.b.c) = %v, %v, want true, nil", isStr, err)
	}
	got, err := s.GetString(ctx, "a.b.c")
	if err != nil || got != "value" {
		t.Fatalf("GetString(a.b.c) = %q, %v, want %q, nil", got, err, "value")
	}
}

func TestCreateCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a.b.c", entries.TextValue("value")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := s.Create(ctx, "a.b", entries.IntegerValue(0)); !regerr.Is(err, regerr.NameAlreadyExists) {
		t.Errorf("Create(a.b) err = %v, want NameAlreadyExists", err)
	}
	if err := s.Create(ctx, "a.b.c", entries.IntegerValue(0)); !regerr.Is(err, regerr.NameAlreadyExists) {
		t.Errorf("Create(a.b.c) err = %v, want NameAlreadyExists", err)
	}
}

func TestRevisionPropagation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r0, err := s.GetRevision(ctx, "")
	if err != nil {
		t.Fatalf("GetRevision(root) failed: %v", err)
	}

	if err := s.Create(ctx, "x", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	r1, err := s.GetRevision(ctx, "")
	if err != nil {
		t.Fatalf("GetRevision(root) failed: %v", err)
	}

	if err := s.Set(ctx, "x", entries.IntegerValue(2)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	r2, err := s.GetRevision(ctx, "")
	if err != nil {
		t.Fatalf("GetRevision(root) failed: %v", err)
	}

	if r0 == r1 || r1 == r2 || r0 == r2 {
		t.Errorf("revisions not pairwise distinct: r0=%d r1=%d r2=%d", r0, r1, r2)
	}
}

func TestNestedWriterCommitPattern(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if err := s.Create(ctx, name, entries.IntegerValue(0)); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	outer, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("outer BeginWriter() failed: %v", err)
	}
	if err := s.Set(ctx, "a", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(a) failed: %v", err)
	}

	inner, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("inner BeginWriter() failed: %v", err)
	}
	if err := s.Set(ctx, "b", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(b) failed: %v", err)
	}
	if err := inner.Commit(ctx); err != nil {
		t.Fatalf("inner Commit() failed: %v", err)
	}

	if err := s.Set(ctx, "c", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(c) failed: %v", err)
	}
	if err := outer.Commit(ctx); err != nil {
		t.Fatalf("outer Commit() failed: %v", err)
	}

	for _, name := range []string{"a", "b", "c"} {
		v, err := s.GetInteger(ctx, name)
		if err != nil || v != 1 {
			t.Errorf("GetInteger(%s) = %d, %v, want 1, nil", name, v, err)
		}
	}
}

func TestNestedWriterInnerRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Create(ctx, name, entries.IntegerValue(0)); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	outer, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("outer BeginWriter() failed: %v", err)
	}
	if err := s.Set(ctx, "a", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(a) failed: %v", err)
	}

	inner, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("inner BeginWriter() failed: %v", err)
	}
	if err := s.Set(ctx, "b", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(b) failed: %v", err)
	}
	if err := inner.Close(ctx); err != nil {
		t.Fatalf("inner Close() failed: %v", err)
	}

	if err := s.Set(ctx, "c", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(c) failed: %v", err)
	}
	if err := outer.Commit(ctx); err != nil {
		t.Fatalf("outer Commit() failed: %v", err)
	}

	a, _ := s.GetInteger(ctx, "a")
	b, _ := s.GetInteger(ctx, "b")
	c, _ := s.GetInteger(ctx, "c")
	if a != 1 || c != 1 || b != 0 {
		t.Errorf("a=%d b=%d c=%d, want a=1 b=0 c=1", a, b, c)
	}
}

func TestOuterRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a", entries.IntegerValue(0)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	outer, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("outer BeginWriter() failed: %v", err)
	}
	inner, err := s.BeginWriter(ctx)
	if err != nil {
		t.Fatalf("inner BeginWriter() failed: %v", err)
	}
	if err := s.Set(ctx, "a", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Set(a) failed: %v", err)
	}
	if err := inner.Commit(ctx); err != nil {
		t.Fatalf("inner Commit() failed: %v", err)
	}
	if err := outer.Close(ctx); err != nil {
		t.Fatalf("outer Close() failed: %v", err)
	}

	got, err := s.GetInteger(ctx, "a")
	if err != nil {
		t.Fatalf("GetInteger() failed: %v", err)
	}
	if got != 0 {
		t.Errorf("a = %d, want 0 after outer rollback", got)
	}
}

func TestDeleteSemantics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a.b", entries.IntegerValue(0)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	rootBefore, err := s.GetRevision(ctx, "")
	if err != nil {
		t.Fatalf("GetRevision() failed: %v", err)
	}

	ok, err := s.TryDelete(ctx, "a", false)
	if err != nil {
		t.Fatalf("TryDelete() failed: %v", err)
	}
	if ok {
		t.Error("TryDelete(a, recursive=false) = true, want false (has children)")
	}
	exists, err := s.Exists(ctx, "a.b")
	if err != nil || !exists {
		t.Fatalf("Exists(a.b) = %v, %v, want true, nil", exists, err)
	}

	if err := s.Delete(ctx, "a", true); err != nil {
		t.Fatalf("Delete(a, recursive=true) failed: %v", err)
	}
	for _, name := range []string{"a", "a.b"} {
		exists, err := s.Exists(ctx, name)
		if err != nil || exists {
			t.Errorf("Exists(%s) = %v, %v, want false, nil", name, exists, err)
		}
	}
	rootAfter, err := s.GetRevision(ctx, "")
	if err != nil {
		t.Fatalf("GetRevision() failed: %v", err)
	}
	if rootBefore == rootAfter {
		t.Error("root revision unchanged after recursive delete")
	}
}

func TestTypeMismatchOnGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "n", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := s.GetString(ctx, "n"); !regerr.Is(err, regerr.WrongValueType) {
		t.Errorf("GetString(n) err = %v, want WrongValueType", err)
	}
}

func TestSetOrCreate_IdempotentUpToRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetOrCreate(ctx, "a.b", entries.IntegerValue(5)); err != nil {
		t.Fatalf("SetOrCreate() failed: %v", err)
	}
	if err := s.SetOrCreate(ctx, "a.b", entries.IntegerValue(5)); err != nil {
		t.Fatalf("second SetOrCreate() failed: %v", err)
	}
	got, err := s.GetInteger(ctx, "a.b")
	if err != nil || got != 5 {
		t.Fatalf("GetInteger(a.b) = %d, %v, want 5, nil", got, err)
	}
}

func TestSetOnMissingEntryFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "nope", entries.IntegerValue(1)); !regerr.Is(err, regerr.EntryNotFound) {
		t.Errorf("Set(nope) err = %v, want EntryNotFound", err)
	}
}

func TestSetNewDelimiter_RejectsConflictingNames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a/b", entries.IntegerValue(0)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := s.SetNewDelimiter(ctx, '/'); !regerr.Is(err, regerr.InvalidDelimiter) {
		t.Errorf("SetNewDelimiter err = %v, want InvalidDelimiter", err)
	}
}

func TestSetNewDelimiter_AppliesGoingForward(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetNewDelimiter(ctx, '/'); err != nil {
		t.Fatalf("SetNewDelimiter() failed: %v", err)
	}
	if err := s.Create(ctx, "a/b", entries.IntegerValue(0)); err != nil {
		t.Fatalf("Create() with new delimiter failed: %v", err)
	}
	exists, err := s.Exists(ctx, "a/b")
	if err != nil || !exists {
		t.Fatalf("Exists(a/b) = %v, %v, want true, nil", exists, err)
	}
}

func TestHasChild(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	has, err := s.HasChild(ctx, "")
	if err != nil {
		t.Fatalf("HasChild(root) failed: %v", err)
	}
	if has {
		t.Error("HasChild(root) = true on an empty store, want false")
	}

	if err := s.Create(ctx, "a.b", entries.IntegerValue(0)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	has, err = s.HasChild(ctx, "")
	if err != nil {
		t.Fatalf("HasChild(root) failed: %v", err)
	}
	if !has {
		t.Error("HasChild(root) = false, want true after creating a.b")
	}

	has, err = s.HasChild(ctx, "a.b")
	if err != nil {
		t.Fatalf("HasChild(a.b) failed: %v", err)
	}
	if has {
		t.Error("HasChild(a.b) = true, want false (a.b is a leaf)")
	}
}

func TestReadOnlyCheckDoesNotChangeRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a", entries.IntegerValue(1)); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	before, err := s.GetRevision(ctx, "a")
	if err != nil {
		t.Fatalf("GetRevision() failed: %v", err)
	}

	if _, err := s.Exists(ctx, "a"); err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if _, err := s.GetChildren(ctx, "a"); err != nil {
		t.Fatalf("GetChildren() failed: %v", err)
	}
	if _, err := s.GetType(ctx, "a"); err != nil {
		t.Fatalf("GetType() failed: %v", err)
	}

	after, err := s.GetRevision(ctx, "a")
	if err != nil {
		t.Fatalf("GetRevision() failed: %v", err)
	}
	if before != after {
		t.Errorf("revision changed from %d to %d after read-only operations", before, after)
	}
}
