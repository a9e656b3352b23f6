// Package ordering implements the dense, 1-based sibling ranking rules.
// A sibling group is all items sharing the same parent and kind; the caller
// always submits the full group, never a partial reordering.
package ordering

import (
	"fmt"
	"sort"

	"github.com/marks-app/marks/internal/model"
)

// CheckOrder verifies that order is a permutation of exactly the given
// sibling group: no duplicates, no unknown ids, no missing members.
// Reordering must never silently reparent, so an id from a different group
// is rejected the same as an unknown one.
func CheckOrder(order []string, siblings []model.Item) error {
	if len(order) != len(siblings) {
		return fmt.Errorf("%w: order names %d items, sibling group has %d",
			model.ErrValidation, len(order), len(siblings))
	}

	members := make(map[string]bool, len(siblings))
	for _, it := range siblings {
		members[it.ID] = true
	}

	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %s in order", model.ErrValidation, id)
		}
		seen[id] = true
		if !members[id] {
			return fmt.Errorf("%w: %s is not part of the sibling group", model.ErrValidation, id)
		}
	}

	return nil
}

// CurrentOrder returns the sibling ids sorted by rank, ties broken by id.
// Feeding the result back into SetRanks collapses any rank gaps left by
// moves out of the group.
func CurrentOrder(siblings []model.Item) []string {
	sorted := make([]model.Item, len(siblings))
	copy(sorted, siblings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].ID < sorted[j].ID
	})

	ids := make([]string, len(sorted))
	for i, it := range sorted {
		ids[i] = it.ID
	}
	return ids
}

// NextRank returns the rank for an item appended to the group.
func NextRank(siblings []model.Item) int {
	return len(siblings) + 1
}
