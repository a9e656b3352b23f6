package storage

import "github.com/marks-app/marks/internal/model"

// ItemUpdate names the mutable fields of an item. Nil fields are left
// untouched. Kind and CreatedAt are immutable; rank changes normally go
// through SetRanks, the field here exists for reparenting appends.
type ItemUpdate struct {
	Name     *string
	Icon     *string
	URL      *string
	ParentID *string
	Rank     *int
}

// Store is the persistence interface for items. Every operation is scoped
// by the owning user; rows belonging to another owner behave as absent.
type Store interface {
	// CreateItem persists a new item with a store-assigned id and
	// creation timestamp.
	CreateItem(ownerID string, params model.NewItemParams, rank int) (model.Item, error)

	// GetItems returns all items of one owner ordered by rank, ties
	// broken by id.
	GetItems(ownerID string) ([]model.Item, error)

	// GetItem returns a single owned item or ErrNotFound.
	GetItem(ownerID, id string) (model.Item, error)

	// UpdateItem applies the non-nil fields. ErrNotFound if the item is
	// absent or owned by someone else.
	UpdateItem(ownerID, id string, fields ItemUpdate) error

	// DeleteItem removes a single item. ErrNotFound if nothing matched.
	DeleteItem(ownerID, id string) error

	// SetRanks assigns rank i+1 to orderedIDs[i] in one transaction.
	SetRanks(ownerID string, orderedIDs []string) error

	Close() error
}
