package model_test

import (
	"errors"
	"testing"

	"github.com/marks-app/marks/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.Kind
		title   string
		url     string
		wantErr error
	}{
		{"valid category", model.KindCategory, "Work", "", nil},
		{"valid folder", model.KindFolder, "Projects", "", nil},
		{"valid bookmark", model.KindBookmark, "Example", "https://example.com", nil},
		{"empty name", model.KindCategory, "", "", model.ErrValidation},
		{"bookmark without url", model.KindBookmark, "Example", "", model.ErrValidation},
		{"folder with url", model.KindFolder, "Projects", "https://example.com", model.ErrValidation},
		{"unknown kind", model.Kind("tag"), "Oops", "", model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateItem(tt.kind, tt.title, tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateHierarchy(t *testing.T) {
	category := model.Item{ID: "c1", Kind: model.KindCategory}
	folder := model.Item{ID: "f1", Kind: model.KindFolder, ParentID: stringPtr("c1")}
	bookmark := model.Item{ID: "b1", Kind: model.KindBookmark, ParentID: stringPtr("c1")}

	tests := []struct {
		name    string
		kind    model.Kind
		parent  *model.Item
		wantErr bool
	}{
		{"category at root", model.KindCategory, nil, false},
		{"folder under category", model.KindFolder, &category, false},
		{"bookmark under category", model.KindBookmark, &category, false},
		{"bookmark under folder", model.KindBookmark, &folder, false},
		{"category under category", model.KindCategory, &category, true},
		{"folder at root", model.KindFolder, nil, true},
		{"folder under folder", model.KindFolder, &folder, true},
		{"folder under bookmark", model.KindFolder, &bookmark, true},
		{"bookmark at root", model.KindBookmark, nil, true},
		{"bookmark under bookmark", model.KindBookmark, &bookmark, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateHierarchy(tt.kind, tt.parent)
			if tt.wantErr {
				if !errors.Is(err, model.ErrInvalidHierarchy) {
					t.Fatalf("expected ErrInvalidHierarchy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSiblings(t *testing.T) {
	items := []model.Item{
		{ID: "c1", Kind: model.KindCategory},
		{ID: "c2", Kind: model.KindCategory},
		{ID: "f1", Kind: model.KindFolder, ParentID: stringPtr("c1")},
		{ID: "b1", Kind: model.KindBookmark, ParentID: stringPtr("c1")},
		{ID: "b2", Kind: model.KindBookmark, ParentID: stringPtr("f1")},
	}

	categories := model.Siblings(items, nil, model.KindCategory)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(categories))
	}

	// Same parent, different kinds are different groups
	folders := model.Siblings(items, stringPtr("c1"), model.KindFolder)
	bookmarks := model.Siblings(items, stringPtr("c1"), model.KindBookmark)
	if len(folders) != 1 || len(bookmarks) != 1 {
		t.Errorf("expected 1 folder and 1 bookmark under c1, got %d and %d",
			len(folders), len(bookmarks))
	}

	if got := model.Siblings(items, stringPtr("f1"), model.KindBookmark); len(got) != 1 || got[0].ID != "b2" {
		t.Errorf("expected [b2] under f1, got %v", got)
	}
}

func TestFindByID(t *testing.T) {
	items := []model.Item{
		{ID: "c1", Kind: model.KindCategory, Name: "Work"},
	}

	if it := model.FindByID(items, "c1"); it == nil || it.Name != "Work" {
		t.Errorf("expected to find c1, got %v", it)
	}
	if it := model.FindByID(items, "nope"); it != nil {
		t.Errorf("expected nil for unknown id, got %v", it)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	a, b := model.GenerateID(), model.GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
