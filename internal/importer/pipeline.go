package importer

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marks-app/marks/internal/model"
	"github.com/marks-app/marks/internal/storage"
)

// Default glyphs for imported items, matching what manual creation uses.
const (
	folderIcon   = "fa-solid fa-folder"
	bookmarkIcon = "fa-solid fa-bookmark"
)

// DefaultChunkSize bounds concurrent bookmark creation per chunk.
const DefaultChunkSize = 20

// defaultPause sits between bookmark chunks to bound burst load.
const defaultPause = 100 * time.Millisecond

// Progress reports pipeline state after the folder phase and after each
// bookmark chunk.
type Progress struct {
	FoldersCreated int
	BookmarksDone  int
	BookmarksTotal int
}

// ProgressFunc receives progress reports. It is called from the goroutine
// running the pipeline, never concurrently.
type ProgressFunc func(Progress)

// Options tune the pipeline. Zero values select the defaults.
type Options struct {
	ChunkSize int
	Pause     time.Duration
	Progress  ProgressFunc
}

// Result summarizes what the pipeline managed to create.
type Result struct {
	FoldersCreated   int
	BookmarksCreated int
}

// Flatten rewrites folders nested under other folders to top level. The
// persisted model holds one folder level per category, so multi-level source
// folders collapse: the folder keeps its contents but sits next to its former
// parent. Lossy on purpose.
func Flatten(doc *Doc) {
	folderSIDs := make(map[string]bool, len(doc.Folders))
	for _, f := range doc.Folders {
		folderSIDs[f.SyntheticID] = true
	}
	for i := range doc.Folders {
		if folderSIDs[doc.Folders[i].ParentSID] {
			doc.Folders[i].ParentSID = ""
		}
	}
}

// Run materializes a parsed plan under the target category. Folders are
// created concurrently, bookmarks in sequential chunks of concurrent creates
// with a short pause between chunks. A bookmark whose folder failed to create
// falls back to the category rather than being dropped. The operation is not
// atomic: on error the created items stay and the caller retries or cleans up
// by hand.
func Run(store storage.Store, ownerID, categoryID string, doc *Doc, opts Options) (Result, error) {
	if ownerID == "" {
		return Result{}, model.ErrUnauthorized
	}

	category, err := store.GetItem(ownerID, categoryID)
	if err != nil {
		return Result{}, err
	}
	if category.Kind != model.KindCategory {
		return Result{}, fmt.Errorf("%w: import target must be a category", model.ErrInvalidHierarchy)
	}

	if doc.Empty() {
		return Result{}, nil
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	pause := opts.Pause
	if pause <= 0 {
		pause = defaultPause
	}
	report := opts.Progress
	if report == nil {
		report = func(Progress) {}
	}

	Flatten(doc)

	all, err := store.GetItems(ownerID)
	if err != nil {
		return Result{}, err
	}
	folderBase := len(model.Siblings(all, &category.ID, model.KindFolder))
	categoryBookmarks := len(model.Siblings(all, &category.ID, model.KindBookmark))

	// Phase 1: folders, all in parallel. Folder counts are small. Failures
	// leave the synthetic id unmapped; the bookmarks fall back below.
	var (
		mu        sync.Mutex
		folderIDs = make(map[string]string, len(doc.Folders))
	)
	var g errgroup.Group
	for i, f := range doc.Folders {
		f := f
		rank := folderBase + i + 1
		g.Go(func() error {
			created, err := store.CreateItem(ownerID, model.NewItemParams{
				Kind:     model.KindFolder,
				Name:     f.Name,
				Icon:     folderIcon,
				ParentID: &category.ID,
			}, rank)
			if err != nil {
				return err
			}
			mu.Lock()
			folderIDs[f.SyntheticID] = created.ID
			mu.Unlock()
			return nil
		})
	}
	firstErr := g.Wait()

	report(Progress{
		FoldersCreated: len(folderIDs),
		BookmarksTotal: len(doc.Bookmarks),
	})

	// Resolve parents and ranks up front: the folder map is final now, and
	// ranks must not depend on goroutine scheduling.
	type creation struct {
		params model.NewItemParams
		rank   int
	}
	nextRank := map[string]int{category.ID: categoryBookmarks}
	creations := make([]creation, 0, len(doc.Bookmarks))
	for _, b := range doc.Bookmarks {
		parentID := category.ID
		if b.ParentSID != "" {
			if real, ok := folderIDs[b.ParentSID]; ok {
				parentID = real
			}
		}
		nextRank[parentID]++
		pid := parentID
		creations = append(creations, creation{
			params: model.NewItemParams{
				Kind:     model.KindBookmark,
				Name:     b.Name,
				Icon:     bookmarkIcon,
				ParentID: &pid,
				URL:      b.URL,
			},
			rank: nextRank[parentID],
		})
	}

	// Phase 2: bookmarks in chunks. Concurrent within a chunk, sequential
	// across chunks, with a pause so the store is not hammered.
	created := 0
	for start := 0; start < len(creations); start += chunkSize {
		end := start + chunkSize
		if end > len(creations) {
			end = len(creations)
		}

		var cg errgroup.Group
		var cmu sync.Mutex
		for _, c := range creations[start:end] {
			c := c
			cg.Go(func() error {
				if _, err := store.CreateItem(ownerID, c.params, c.rank); err != nil {
					return err
				}
				cmu.Lock()
				created++
				cmu.Unlock()
				return nil
			})
		}
		if err := cg.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}

		report(Progress{
			FoldersCreated: len(folderIDs),
			BookmarksDone:  end,
			BookmarksTotal: len(creations),
		})

		if end < len(creations) {
			time.Sleep(pause)
		}
	}

	return Result{
		FoldersCreated:   len(folderIDs),
		BookmarksCreated: created,
	}, firstErr
}
