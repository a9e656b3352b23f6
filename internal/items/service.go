// Package items implements the mutation protocol over the item store:
// guarded creates and edits, save-order, drag-to-folder moves and cascading
// deletes, with per-sibling-group mutual exclusion.
package items

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/marks-app/marks/internal/model"
	"github.com/marks-app/marks/internal/ordering"
	"github.com/marks-app/marks/internal/storage"
)

// Service executes item mutations against a Store. It holds no authoritative
// state of its own; the in-flight group set only guards against interleaved
// rank writes.
type Service struct {
	store storage.Store

	mu       sync.Mutex
	inFlight map[string]bool // sibling groups with a mutation in flight
}

// NewService creates a Service on top of the given store.
func NewService(store storage.Store) *Service {
	return &Service{
		store:    store,
		inFlight: make(map[string]bool),
	}
}

// groupKey identifies a sibling group: one owner, one parent, one kind.
func groupKey(ownerID string, parentID *string, kind model.Kind) string {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return ownerID + "/" + parent + "/" + string(kind)
}

// lockGroups marks the given sibling groups as busy, or fails with
// ErrConflict if any of them already is. Keys are sorted so overlapping
// callers always observe the same acquisition order.
func (s *Service) lockGroups(keys ...string) error {
	sort.Strings(keys)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		if s.inFlight[k] {
			return fmt.Errorf("%w: sibling group busy", model.ErrConflict)
		}
	}
	for _, k := range keys {
		s.inFlight[k] = true
	}
	return nil
}

func (s *Service) unlockGroups(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.inFlight, k)
	}
}

// List returns all of the owner's items ordered by rank.
func (s *Service) List(ownerID string) ([]model.Item, error) {
	if ownerID == "" {
		return nil, model.ErrUnauthorized
	}
	return s.store.GetItems(ownerID)
}

// Create validates and persists a new item, appended to the end of its
// sibling group.
func (s *Service) Create(ownerID string, params model.NewItemParams) (model.Item, error) {
	if ownerID == "" {
		return model.Item{}, model.ErrUnauthorized
	}
	if err := model.ValidateItem(params.Kind, params.Name, params.URL); err != nil {
		return model.Item{}, err
	}

	var parent *model.Item
	if params.ParentID != nil {
		p, err := s.store.GetItem(ownerID, *params.ParentID)
		if err != nil {
			return model.Item{}, err
		}
		parent = &p
	}
	if err := model.ValidateHierarchy(params.Kind, parent); err != nil {
		return model.Item{}, err
	}

	all, err := s.store.GetItems(ownerID)
	if err != nil {
		return model.Item{}, err
	}
	rank := ordering.NextRank(model.Siblings(all, params.ParentID, params.Kind))

	return s.store.CreateItem(ownerID, params, rank)
}

// Edit names the editable fields of an item. Nil fields are left alone.
type Edit struct {
	Name *string
	Icon *string
	URL  *string
}

// Update edits name, icon or url of an existing item. Kind and parent are
// immutable here; reparenting goes through MoveToFolder.
func (s *Service) Update(ownerID, id string, edit Edit) error {
	if ownerID == "" {
		return model.ErrUnauthorized
	}

	item, err := s.store.GetItem(ownerID, id)
	if err != nil {
		return err
	}

	name, url := item.Name, item.URL
	if edit.Name != nil {
		name = *edit.Name
	}
	if edit.URL != nil {
		url = *edit.URL
	}
	if err := model.ValidateItem(item.Kind, name, url); err != nil {
		return err
	}

	return s.store.UpdateItem(ownerID, id, storage.ItemUpdate{
		Name: edit.Name,
		Icon: edit.Icon,
		URL:  edit.URL,
	})
}

// SaveOrder persists a caller-chosen order for one sibling group. The full
// group must be named; ranks come out dense, 1-based, in the given order.
func (s *Service) SaveOrder(ownerID string, parentID *string, kind model.Kind, order []string) error {
	if ownerID == "" {
		return model.ErrUnauthorized
	}

	key := groupKey(ownerID, parentID, kind)
	if err := s.lockGroups(key); err != nil {
		return err
	}
	defer s.unlockGroups(key)

	all, err := s.store.GetItems(ownerID)
	if err != nil {
		return err
	}
	siblings := model.Siblings(all, parentID, kind)

	if err := ordering.CheckOrder(order, siblings); err != nil {
		return err
	}

	return s.store.SetRanks(ownerID, order)
}

// MoveToFolder reparents a bookmark from directly under a category into a
// folder of that same category (the drag-to-folder gesture). Dropping onto
// the current parent or onto a non-folder is a no-op. Bookmarks already
// inside a folder, and items that are not bookmarks, are not movable.
func (s *Service) MoveToFolder(ownerID, bookmarkID, targetID string) error {
	if ownerID == "" {
		return model.ErrUnauthorized
	}

	bookmark, err := s.store.GetItem(ownerID, bookmarkID)
	if err != nil {
		return err
	}
	if bookmark.Kind != model.KindBookmark {
		return fmt.Errorf("%w: only bookmarks can be moved to a folder", model.ErrValidation)
	}
	if bookmark.ParentID == nil {
		return fmt.Errorf("%w: bookmark has no parent", model.ErrValidation)
	}
	if *bookmark.ParentID == targetID {
		// Dropped onto its current parent
		return nil
	}

	currentParent, err := s.store.GetItem(ownerID, *bookmark.ParentID)
	if err != nil {
		return err
	}
	if currentParent.Kind != model.KindCategory {
		return fmt.Errorf("%w: only bookmarks parented to a category are movable", model.ErrValidation)
	}

	target, err := s.store.GetItem(ownerID, targetID)
	if err != nil {
		return err
	}
	if target.Kind != model.KindFolder {
		// Dropped onto something that is not a folder
		return nil
	}
	if target.ParentID == nil || *target.ParentID != currentParent.ID {
		return fmt.Errorf("%w: target folder belongs to a different category", model.ErrInvalidHierarchy)
	}
	if err := model.ValidateHierarchy(model.KindBookmark, &target); err != nil {
		return err
	}

	sourceKey := groupKey(ownerID, bookmark.ParentID, model.KindBookmark)
	destKey := groupKey(ownerID, &target.ID, model.KindBookmark)
	if err := s.lockGroups(sourceKey, destKey); err != nil {
		return err
	}
	defer s.unlockGroups(sourceKey, destKey)

	all, err := s.store.GetItems(ownerID)
	if err != nil {
		return err
	}
	rank := ordering.NextRank(model.Siblings(all, &target.ID, model.KindBookmark))

	// The source group keeps its rank gap until the next save-order.
	return s.store.UpdateItem(ownerID, bookmarkID, storage.ItemUpdate{
		ParentID: &target.ID,
		Rank:     &rank,
	})
}

// Delete removes an item and every descendant, bottom-up: bookmarks inside
// the folders of a category first, then the category's direct bookmarks,
// then its folders, then the item itself. A missing root is a no-op, so
// retrying a failed delete is safe.
func (s *Service) Delete(ownerID, id string) error {
	if ownerID == "" {
		return model.ErrUnauthorized
	}

	all, err := s.store.GetItems(ownerID)
	if err != nil {
		return err
	}
	root := model.FindByID(all, id)
	if root == nil {
		return nil
	}

	for _, victim := range cascadeOrder(all, *root) {
		if err := s.store.DeleteItem(ownerID, victim); err != nil {
			// Already gone, e.g. a retried delete
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

// cascadeOrder returns the ids to delete, descendants before ancestors.
func cascadeOrder(all []model.Item, root model.Item) []string {
	var order []string

	switch root.Kind {
	case model.KindCategory:
		folders := model.Siblings(all, &root.ID, model.KindFolder)
		for _, f := range folders {
			for _, b := range model.Siblings(all, &f.ID, model.KindBookmark) {
				order = append(order, b.ID)
			}
		}
		for _, b := range model.Siblings(all, &root.ID, model.KindBookmark) {
			order = append(order, b.ID)
		}
		for _, f := range folders {
			order = append(order, f.ID)
		}
	case model.KindFolder:
		for _, b := range model.Siblings(all, &root.ID, model.KindBookmark) {
			order = append(order, b.ID)
		}
	}

	return append(order, root.ID)
}
