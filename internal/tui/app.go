package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marks-app/marks/internal/items"
	"github.com/marks-app/marks/internal/model"
)

// level is the navigation depth: categories, one category's contents, one
// folder's contents.
type level int

const (
	levelRoot level = iota
	levelCategory
	levelFolder
)

// App is the main bubbletea model for the marks browser.
type App struct {
	svc     *items.Service
	session *items.Session
	owner   string
	keys    KeyMap
	styles  Styles

	// Navigation state
	all      []model.Item // last snapshot from the store
	level    level
	category *model.Item
	folder   *model.Item
	cursor   int
	visible  []model.Item

	status string // last error or notice

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Service *items.Service
	OwnerID string
	Keys    *KeyMap // optional, uses default if nil
	Styles  *Styles // optional, uses default if nil
}

// NewApp creates a new App and loads the owner's items.
func NewApp(params AppParams) (App, error) {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	app := App{
		svc:     params.Service,
		session: items.NewSession(params.Service, params.OwnerID),
		owner:   params.OwnerID,
		keys:    keys,
		styles:  styles,
		width:   80,
		height:  24,
	}

	if err := app.reload(); err != nil {
		return App{}, err
	}
	return app, nil
}

// reload refetches the store snapshot and rebuilds the visible list.
func (a *App) reload() error {
	all, err := a.svc.List(a.owner)
	if err != nil {
		return err
	}
	a.all = all
	a.refreshVisible()
	return nil
}

// refreshVisible rebuilds the visible list for the current level and mode.
func (a *App) refreshVisible() {
	a.visible = nil

	switch a.session.Mode() {
	case items.ModeReordering:
		// Show the candidate order of the group being reordered
		for _, id := range a.session.CandidateOrder() {
			if it := model.FindByID(a.all, id); it != nil {
				a.visible = append(a.visible, *it)
			}
		}
	case items.ModeDragging:
		// Drop targets: the folders of the current category
		if a.category != nil {
			a.visible = model.Siblings(a.all, &a.category.ID, model.KindFolder)
		}
	default:
		switch a.level {
		case levelRoot:
			a.visible = model.Siblings(a.all, nil, model.KindCategory)
		case levelCategory:
			a.visible = append(a.visible, model.Siblings(a.all, &a.category.ID, model.KindFolder)...)
			a.visible = append(a.visible, model.Siblings(a.all, &a.category.ID, model.KindBookmark)...)
		case levelFolder:
			a.visible = model.Siblings(a.all, &a.folder.ID, model.KindBookmark)
		}
	}

	if a.cursor >= len(a.visible) {
		a.cursor = len(a.visible) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// selected returns the item under the cursor, or nil.
func (a *App) selected() *model.Item {
	if len(a.visible) == 0 || a.cursor >= len(a.visible) {
		return nil
	}
	return &a.visible[a.cursor]
}

// parentOf returns the parent reference for the current level.
func (a *App) parentOf() *string {
	switch a.level {
	case levelCategory:
		return &a.category.ID
	case levelFolder:
		return &a.folder.ID
	}
	return nil
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Visible returns the currently listed items.
func (a App) Visible() []model.Item {
	return a.visible
}

// Mode returns the session's interaction mode.
func (a App) Mode() items.Mode {
	return a.session.Mode()
}

// Status returns the last status or error line.
func (a App) Status() string {
	return a.status
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.status = ""

		// Handle gg sequence
		if key.Matches(msg, a.keys.Top) {
			if a.lastKeyWasG {
				a.cursor = 0
				if a.session.Mode() == items.ModeReordering {
					a.status = "gg ignored while reordering"
				}
				a.lastKeyWasG = false
				return a, nil
			}
			a.lastKeyWasG = true
			return a, nil
		}
		a.lastKeyWasG = false

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, a.keys.Down):
			a.moveCursor(1)

		case key.Matches(msg, a.keys.Up):
			a.moveCursor(-1)

		case key.Matches(msg, a.keys.Bottom):
			if len(a.visible) > 0 && a.session.Mode() == items.ModeIdle {
				a.cursor = len(a.visible) - 1
			}

		case key.Matches(msg, a.keys.Right):
			a.enter()

		case key.Matches(msg, a.keys.Left):
			a.back()

		case key.Matches(msg, a.keys.Reorder):
			a.beginReorder()

		case key.Matches(msg, a.keys.Save):
			a.saveOrder()

		case key.Matches(msg, a.keys.Move):
			a.beginDrag()

		case key.Matches(msg, a.keys.YankURL):
			a.yankURL()

		case key.Matches(msg, a.keys.Delete):
			a.deleteSelected()

		case key.Matches(msg, a.keys.Cancel):
			a.session.Cancel()
			a.refreshVisible()
		}
	}

	return a, nil
}

// moveCursor moves the cursor; in reorder mode it moves the selected item
// through the candidate order instead.
func (a *App) moveCursor(delta int) {
	next := a.cursor + delta
	if next < 0 || next >= len(a.visible) {
		return
	}

	if a.session.Mode() == items.ModeReordering {
		if err := a.session.MoveItem(a.cursor, next); err != nil {
			a.status = err.Error()
			return
		}
		a.cursor = next
		a.refreshVisible()
		return
	}

	a.cursor = next
}

// enter descends into the selected container, or drops the dragged bookmark.
func (a *App) enter() {
	sel := a.selected()
	if sel == nil {
		return
	}

	if a.session.Mode() == items.ModeDragging {
		if err := a.session.Drop(sel.ID); err != nil {
			a.status = err.Error()
		}
		if err := a.reload(); err != nil {
			a.status = err.Error()
		}
		return
	}
	if a.session.Mode() != items.ModeIdle {
		return
	}

	switch sel.Kind {
	case model.KindCategory:
		cat := *sel
		a.category = &cat
		a.level = levelCategory
		a.cursor = 0
		a.refreshVisible()
	case model.KindFolder:
		folder := *sel
		a.folder = &folder
		a.level = levelFolder
		a.cursor = 0
		a.refreshVisible()
	}
}

// back pops one navigation level.
func (a *App) back() {
	if a.session.Mode() != items.ModeIdle {
		return
	}

	switch a.level {
	case levelFolder:
		a.folder = nil
		a.level = levelCategory
	case levelCategory:
		a.category = nil
		a.level = levelRoot
	}
	a.cursor = 0
	a.refreshVisible()
}

// beginReorder enters reorder mode for the selected item's sibling group.
func (a *App) beginReorder() {
	sel := a.selected()
	if sel == nil {
		return
	}

	siblings := model.Siblings(a.all, sel.ParentID, sel.Kind)
	order := make([]string, len(siblings))
	pos := 0
	for i, it := range siblings {
		order[i] = it.ID
		if it.ID == sel.ID {
			pos = i
		}
	}

	if err := a.session.BeginReorder(items.Group{ParentID: sel.ParentID, Kind: sel.Kind}, order); err != nil {
		a.status = err.Error()
		return
	}
	a.cursor = pos
	a.refreshVisible()
}

// saveOrder persists the candidate order and leaves reorder mode.
func (a *App) saveOrder() {
	if a.session.Mode() != items.ModeReordering {
		return
	}
	if err := a.session.SaveOrder(); err != nil {
		a.status = err.Error()
		return
	}
	a.status = "order saved"
	if err := a.reload(); err != nil {
		a.status = err.Error()
	}
}

// beginDrag picks up the selected bookmark for a drag-to-folder move.
// Only bookmarks sitting directly under the current category are eligible.
func (a *App) beginDrag() {
	sel := a.selected()
	if sel == nil || a.level != levelCategory {
		return
	}
	if sel.Kind != model.KindBookmark {
		a.status = "only bookmarks can be moved into a folder"
		return
	}

	if err := a.session.BeginDrag(sel.ID); err != nil {
		a.status = err.Error()
		return
	}
	a.cursor = 0
	a.refreshVisible()
}

// yankURL copies the selected bookmark's URL to the clipboard.
func (a *App) yankURL() {
	sel := a.selected()
	if sel == nil || sel.Kind != model.KindBookmark {
		return
	}
	if err := clipboard.WriteAll(sel.URL); err != nil {
		a.status = "clipboard unavailable"
		return
	}
	a.status = "URL copied"
}

// deleteSelected removes the selected item with cascade.
func (a *App) deleteSelected() {
	sel := a.selected()
	if sel == nil || a.session.Mode() != items.ModeIdle {
		return
	}
	if err := a.svc.Delete(a.owner, sel.ID); err != nil {
		a.status = err.Error()
		return
	}
	if err := a.reload(); err != nil {
		a.status = err.Error()
	}
}
