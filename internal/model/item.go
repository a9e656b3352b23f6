package model

import "time"

// Kind identifies the three item levels of the hierarchy.
type Kind string

const (
	KindCategory Kind = "category"
	KindFolder   Kind = "folder"
	KindBookmark Kind = "bookmark"
)

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCategory, KindFolder, KindBookmark:
		return true
	}
	return false
}

// Item is the single persisted entity. Categories sit at the root,
// folders under a category, bookmarks under a category or folder.
type Item struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	ParentID  *string   `json:"parentId"` // nil = root level (categories only)
	URL       string    `json:"url,omitempty"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewItemParams holds parameters for creating a new Item.
// ID, Rank and CreatedAt are assigned by the store.
type NewItemParams struct {
	Kind     Kind
	Name     string
	Icon     string
	ParentID *string
	URL      string
}

// SameParent compares two parent references for equality.
func SameParent(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Siblings returns the items sharing the given parent and kind,
// preserving the order of the input slice.
func Siblings(items []Item, parentID *string, kind Kind) []Item {
	var result []Item
	for _, it := range items {
		if it.Kind == kind && SameParent(it.ParentID, parentID) {
			result = append(result, it)
		}
	}
	return result
}

// FindByID returns the item with the given id, or nil if absent.
func FindByID(items []Item, id string) *Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
