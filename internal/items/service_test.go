package items_test

import (
	"errors"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/marks-app/marks/internal/items"
	"github.com/marks-app/marks/internal/model"
	"github.com/marks-app/marks/internal/storage"
)

const owner = "alice"

func newTestService(t *testing.T) (*items.Service, storage.Store) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "marks.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return items.NewService(store), store
}

func mustCreate(t *testing.T, svc *items.Service, params model.NewItemParams) model.Item {
	t.Helper()
	it, err := svc.Create(owner, params)
	if err != nil {
		t.Fatalf("failed to create %s %q: %v", params.Kind, params.Name, err)
	}
	return it
}

func category(t *testing.T, svc *items.Service, name string) model.Item {
	return mustCreate(t, svc, model.NewItemParams{Kind: model.KindCategory, Name: name})
}

func folder(t *testing.T, svc *items.Service, name string, parent model.Item) model.Item {
	return mustCreate(t, svc, model.NewItemParams{
		Kind: model.KindFolder, Name: name, ParentID: &parent.ID,
	})
}

func bookmark(t *testing.T, svc *items.Service, name string, parent model.Item) model.Item {
	return mustCreate(t, svc, model.NewItemParams{
		Kind: model.KindBookmark, Name: name, ParentID: &parent.ID,
		URL: "https://example.com/" + name,
	})
}

func TestService_Create_AssignsRanksPerGroup(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	play := category(t, svc, "Play")
	assert.Equal(t, 1, work.Rank)
	assert.Equal(t, 2, play.Rank)

	// Each sibling group counts from 1 on its own
	f := folder(t, svc, "Projects", work)
	assert.Equal(t, 1, f.Rank)
	b1 := bookmark(t, svc, "one", work)
	b2 := bookmark(t, svc, "two", work)
	assert.Equal(t, 1, b1.Rank)
	assert.Equal(t, 2, b2.Rank)
}

func TestService_Create_GuardFailures(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	bm := bookmark(t, svc, "one", work)

	// Bookmark without a url
	_, err := svc.Create(owner, model.NewItemParams{
		Kind: model.KindBookmark, Name: "NoURL", ParentID: &work.ID,
	})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// Empty name
	_, err = svc.Create(owner, model.NewItemParams{Kind: model.KindCategory, Name: ""})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// Folder parented to a bookmark
	_, err = svc.Create(owner, model.NewItemParams{
		Kind: model.KindFolder, Name: "Bad", ParentID: &bm.ID,
	})
	assert.Assert(t, errors.Is(err, model.ErrInvalidHierarchy))

	// Folder at root
	_, err = svc.Create(owner, model.NewItemParams{Kind: model.KindFolder, Name: "Orphan"})
	assert.Assert(t, errors.Is(err, model.ErrInvalidHierarchy))

	// Parent that does not exist
	ghost := "no-such-id"
	_, err = svc.Create(owner, model.NewItemParams{
		Kind: model.KindBookmark, Name: "Lost", ParentID: &ghost, URL: "https://x.example",
	})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))

	// No owner context
	_, err = svc.Create("", model.NewItemParams{Kind: model.KindCategory, Name: "X"})
	assert.Assert(t, errors.Is(err, model.ErrUnauthorized))
}

func TestService_Create_CrossOwnerParent(t *testing.T) {
	svc, store := newTestService(t)

	// Bob owns a category; alice must not attach to it
	bobCat, err := store.CreateItem("bob", model.NewItemParams{
		Kind: model.KindCategory, Name: "Bob's",
	}, 1)
	assert.NilError(t, err)

	_, err = svc.Create(owner, model.NewItemParams{
		Kind: model.KindFolder, Name: "Sneaky", ParentID: &bobCat.ID,
	})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	bm := bookmark(t, svc, "one", work)

	name := "renamed"
	url := "https://renamed.example"
	assert.NilError(t, svc.Update(owner, bm.ID, items.Edit{Name: &name, URL: &url}))

	all, err := svc.List(owner)
	assert.NilError(t, err)
	got := model.FindByID(all, bm.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "https://renamed.example", got.URL)

	// Clearing a bookmark's url is rejected
	empty := ""
	err = svc.Update(owner, bm.ID, items.Edit{URL: &empty})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// Unknown id
	err = svc.Update(owner, "no-such-id", items.Edit{Name: &name})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestService_SaveOrder(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	b1 := bookmark(t, svc, "one", work)
	b2 := bookmark(t, svc, "two", work)
	b3 := bookmark(t, svc, "three", work)

	err := svc.SaveOrder(owner, &work.ID, model.KindBookmark, []string{b3.ID, b1.ID, b2.ID})
	assert.NilError(t, err)

	all, err := svc.List(owner)
	assert.NilError(t, err)
	group := model.Siblings(all, &work.ID, model.KindBookmark)

	want := []string{b3.ID, b1.ID, b2.ID}
	for i, id := range want {
		assert.Equal(t, id, group[i].ID)
		assert.Equal(t, i+1, group[i].Rank)
	}
}

func TestService_SaveOrder_RejectsForeignSibling(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	play := category(t, svc, "Play")
	b1 := bookmark(t, svc, "one", work)
	stray := bookmark(t, svc, "stray", play)

	// An id from another group must not be silently reparented
	err := svc.SaveOrder(owner, &work.ID, model.KindBookmark, []string{b1.ID, stray.ID})
	assert.Assert(t, errors.Is(err, model.ErrValidation))
}

func TestService_MoveToFolder(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	f := folder(t, svc, "Projects", work)
	inFolder := bookmark(t, svc, "existing", f)
	loose := bookmark(t, svc, "loose", work)

	assert.NilError(t, svc.MoveToFolder(owner, loose.ID, f.ID))

	all, err := svc.List(owner)
	assert.NilError(t, err)
	moved := model.FindByID(all, loose.ID)
	assert.Assert(t, moved.ParentID != nil && *moved.ParentID == f.ID)
	// Appended after the folder's existing bookmark
	assert.Equal(t, inFolder.Rank+1, moved.Rank)
}

func TestService_MoveToFolder_Ineligible(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	f1 := folder(t, svc, "One", work)
	f2 := folder(t, svc, "Two", work)
	other := category(t, svc, "Other")
	otherFolder := folder(t, svc, "Far", other)
	nested := bookmark(t, svc, "nested", f1)
	loose := bookmark(t, svc, "loose", work)

	// A bookmark already inside a folder is not draggable
	err := svc.MoveToFolder(owner, nested.ID, f2.ID)
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// Non-bookmarks are not draggable
	err = svc.MoveToFolder(owner, f1.ID, f2.ID)
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// A folder of a different category is no legal target
	err = svc.MoveToFolder(owner, loose.ID, otherFolder.ID)
	assert.Assert(t, errors.Is(err, model.ErrInvalidHierarchy))

	// Nothing moved
	all, err := svc.List(owner)
	assert.NilError(t, err)
	assert.Assert(t, *model.FindByID(all, nested.ID).ParentID == f1.ID)
	assert.Assert(t, *model.FindByID(all, loose.ID).ParentID == work.ID)
}

func TestService_MoveToFolder_NoOps(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	f := folder(t, svc, "Projects", work)
	loose := bookmark(t, svc, "loose", work)
	target := bookmark(t, svc, "target", work)

	// Dropping onto the current parent does nothing
	assert.NilError(t, svc.MoveToFolder(owner, loose.ID, work.ID))

	// Dropping onto a non-folder does nothing
	assert.NilError(t, svc.MoveToFolder(owner, loose.ID, target.ID))

	all, err := svc.List(owner)
	assert.NilError(t, err)
	got := model.FindByID(all, loose.ID)
	assert.Assert(t, *got.ParentID == work.ID)
	assert.Equal(t, 0, len(model.Siblings(all, &f.ID, model.KindBookmark)))
}

func TestService_Delete_CategoryCascades(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	keep := category(t, svc, "Keep")
	f1 := folder(t, svc, "One", work)
	f2 := folder(t, svc, "Two", work)
	bookmark(t, svc, "a", f1)
	bookmark(t, svc, "b", f1)
	bookmark(t, svc, "c", f2)
	bookmark(t, svc, "d", work)
	survivor := bookmark(t, svc, "e", keep)

	before, err := svc.List(owner)
	assert.NilError(t, err)

	// 2 folders + 4 bookmarks + the category itself
	assert.NilError(t, svc.Delete(owner, work.ID))

	after, err := svc.List(owner)
	assert.NilError(t, err)
	assert.Equal(t, len(before)-7, len(after))

	// No survivors reference the deleted subtree
	deleted := map[string]bool{work.ID: true, f1.ID: true, f2.ID: true}
	for _, it := range after {
		if it.ParentID != nil && deleted[*it.ParentID] {
			t.Errorf("item %s still references deleted parent", it.ID)
		}
	}
	assert.Assert(t, model.FindByID(after, survivor.ID) != nil)

	// Deleting again is a no-op
	assert.NilError(t, svc.Delete(owner, work.ID))
}

func TestService_Delete_FolderCascades(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	f := folder(t, svc, "Projects", work)
	bookmark(t, svc, "in-folder", f)
	loose := bookmark(t, svc, "loose", work)

	assert.NilError(t, svc.Delete(owner, f.ID))

	after, err := svc.List(owner)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(after)) // category + loose bookmark
	assert.Assert(t, model.FindByID(after, loose.ID) != nil)
	assert.Assert(t, model.FindByID(after, work.ID) != nil)
}

func TestService_Delete_SingleBookmark(t *testing.T) {
	svc, _ := newTestService(t)

	work := category(t, svc, "Work")
	bm := bookmark(t, svc, "one", work)

	assert.NilError(t, svc.Delete(owner, bm.ID))

	after, err := svc.List(owner)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(after))
}

func TestService_Unauthorized(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.List(""); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("List: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Delete("", "x"); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Delete: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.SaveOrder("", nil, model.KindCategory, nil); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("SaveOrder: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.MoveToFolder("", "a", "b"); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("MoveToFolder: expected ErrUnauthorized, got %v", err)
	}
}
