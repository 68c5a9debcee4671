package entries

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/halvorsen/regtree/internal/storedb"
)

func openTestDB(t *testing.T) *storedb.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storedb.Open(path)
	if err != nil {
		t.Fatalf("storedb.Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndByID(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	id, err := Insert(ctx, ex, RootID, "widgets", IntegerValue(7), 42)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	e, found, err := ByID(ctx, ex, id)
	if err != nil {
		t.Fatalf("ByID() failed: %v", err)
	}
	if !found {
		t.Fatal("ByID() did not find inserted entry")
	}
	if e.Name != "widgets" || e.Revision != 42 {
		t.Errorf("got %+v, want name=widgets revision=42", e)
	}
	if got, ok := e.Value.(IntegerValue); !ok || int64(got) != 7 {
		t.Errorf("value = %#v, want IntegerValue(7)", e.Value)
	}
}

func TestByParentAndName_Unique(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	if _, err := Insert(ctx, ex, RootID, "widgets", TextValue("x"), 1); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	e, found, err := ByParentAndName(ctx, ex, RootID, "widgets")
	if err != nil {
		t.Fatalf("ByParentAndName() failed: %v", err)
	}
	if !found {
		t.Fatal("expected entry to be found")
	}
	if e.Name != "widgets" {
		t.Errorf("name = %q, want widgets", e.Name)
	}

	_, found, err = ByParentAndName(ctx, ex, RootID, "missing")
	if err != nil {
		t.Fatalf("ByParentAndName() failed: %v", err)
	}
	if found {
		t.Error("expected missing name to not be found")
	}
}

func TestUpdateValue_PreservesRevisionAndName(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	id, err := Insert(ctx, ex, RootID, "counter", IntegerValue(1), 5)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := UpdateValue(ctx, ex, id, IntegerValue(2)); err != nil {
		t.Fatalf("UpdateValue() failed: %v", err)
	}

	e, _, err := ByID(ctx, ex, id)
	if err != nil {
		t.Fatalf("ByID() failed: %v", err)
	}
	if e.Revision != 5 {
		t.Errorf("revision = %d, want unchanged 5", e.Revision)
	}
	if e.Name != "counter" {
		t.Errorf("name = %q, want unchanged counter", e.Name)
	}
	if v, ok := e.Value.(IntegerValue); !ok || int64(v) != 2 {
		t.Errorf("value = %#v, want IntegerValue(2)", e.Value)
	}
}

func TestBlobValue_EmptyRoundTripsAsNull(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	id, err := Insert(ctx, ex, RootID, "payload", BlobValue(nil), 1)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	e, _, err := ByID(ctx, ex, id)
	if err != nil {
		t.Fatalf("ByID() failed: %v", err)
	}
	b, ok := e.Value.(BlobValue)
	if !ok {
		t.Fatalf("value type = %T, want BlobValue", e.Value)
	}
	if len(b) != 0 {
		t.Errorf("blob = %v, want empty", b)
	}
}

func TestChildrenAndHasChild(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	parent, err := Insert(ctx, ex, RootID, "parent", IntegerValue(0), 1)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if _, err := Insert(ctx, ex, parent, "a", IntegerValue(0), 1); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if _, err := Insert(ctx, ex, parent, "b", IntegerValue(0), 1); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	has, err := HasChild(ctx, ex, parent)
	if err != nil {
		t.Fatalf("HasChild() failed: %v", err)
	}
	if !has {
		t.Error("HasChild() = false, want true")
	}

	children, err := Children(ctx, ex, parent)
	if err != nil {
		t.Fatalf("Children() failed: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("len(children) = %d, want 2", len(children))
	}
}

func TestDeleteByID(t *testing.T) {
	db := openTestDB(t)
	ex := db.Executor()
	ctx := context.Background()

	id, err := Insert(ctx, ex, RootID, "gone", IntegerValue(0), 1)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if err := DeleteByID(ctx, ex, id); err != nil {
		t.Fatalf("DeleteByID() failed: %v", err)
	}
	_, found, err := ByID(ctx, ex, id)
	if err != nil {
		t.Fatalf("ByID() failed: %v", err)
	}
	if found {
		t.Error("entry still found after DeleteByID()")
	}
}
