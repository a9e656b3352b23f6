package search

import (
	"github.com/marks-app/marks/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy search match.
type Result struct {
	Item           *model.Item
	MatchedIndexes []int
	Score          int
}

// bookmarkNames implements fuzzy.Source for a bookmark slice.
type bookmarkNames []*model.Item

func (bn bookmarkNames) String(i int) string {
	return bn[i].Name
}

func (bn bookmarkNames) Len() int {
	return len(bn)
}

// Bookmarks searches all bookmarks by name using fuzzy matching.
// Returns results sorted by match score (best first).
func Bookmarks(items []model.Item, query string) []Result {
	if query == "" {
		return nil
	}

	var bookmarks bookmarkNames
	for i := range items {
		if items[i].Kind == model.KindBookmark {
			bookmarks = append(bookmarks, &items[i])
		}
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Item:           bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
