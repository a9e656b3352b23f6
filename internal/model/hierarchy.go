package model

import "fmt"

// parentKinds maps each child kind to the set of legal parent kinds.
// Categories are roots and have no entry; the closed table makes cycles
// structurally impossible.
var parentKinds = map[Kind][]Kind{
	KindCategory: nil,
	KindFolder:   {KindCategory},
	KindBookmark: {KindCategory, KindFolder},
}

// ValidateItem checks the field rules for a kind: every item needs a
// non-empty name, bookmarks need a URL, nothing else may carry one.
func ValidateItem(kind Kind, name, url string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if kind == KindBookmark && url == "" {
		return fmt.Errorf("%w: bookmark requires a url", ErrValidation)
	}
	if kind != KindBookmark && url != "" {
		return fmt.Errorf("%w: %s must not have a url", ErrValidation, kind)
	}
	return nil
}

// ValidateHierarchy checks that parent is a legal parent for a child of the
// given kind. Pass nil for a root-level item. The check is pure: the caller
// resolves and owner-checks the parent first.
func ValidateHierarchy(kind Kind, parent *Item) error {
	legal := parentKinds[kind]

	if parent == nil {
		if len(legal) == 0 {
			return nil
		}
		return fmt.Errorf("%w: %s requires a parent", ErrInvalidHierarchy, kind)
	}

	for _, k := range legal {
		if parent.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot be parented to %s", ErrInvalidHierarchy, kind, parent.Kind)
}
