package tui

import (
	"strings"

	"github.com/marks-app/marks/internal/items"
	"github.com/marks-app/marks/internal/model"
)

// View implements tea.Model.
func (a App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("marks"))
	if crumb := a.breadcrumb(); crumb != "" {
		b.WriteString("  ")
		b.WriteString(a.styles.Breadcrumb.Render(crumb))
	}
	if a.session.Mode() != items.ModeIdle {
		b.WriteString("  ")
		b.WriteString(a.styles.Mode.Render("[" + a.session.Mode().String() + "]"))
	}
	b.WriteString("\n\n")

	if len(a.visible) == 0 {
		b.WriteString(a.styles.Empty.Render("nothing here"))
		b.WriteString("\n")
	}

	for i, it := range a.visible {
		line := itemLabel(it)
		if it.Kind == model.KindBookmark && it.URL != "" {
			line += "  " + a.styles.URL.Render(it.URL)
		}
		if i == a.cursor {
			b.WriteString(a.styles.ItemSelected.Render(line))
		} else {
			b.WriteString(a.styles.Item.Render(line))
		}
		b.WriteString("\n")
	}

	if a.status != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Status.Render(a.status))
	}

	b.WriteString(a.styles.Help.Render(a.hints()))

	return a.styles.App.Render(b.String())
}

// breadcrumb shows the navigation path.
func (a App) breadcrumb() string {
	switch a.level {
	case levelCategory:
		return a.category.Name
	case levelFolder:
		return a.category.Name + " / " + a.folder.Name
	}
	return ""
}

// itemLabel renders the kind marker and name of one row.
func itemLabel(it model.Item) string {
	switch it.Kind {
	case model.KindCategory:
		return "▣ " + it.Name
	case model.KindFolder:
		return "▸ " + it.Name
	default:
		return "• " + it.Name
	}
}

// hints returns the context-dependent key help line.
func (a App) hints() string {
	switch a.session.Mode() {
	case items.ModeReordering:
		return "j/k move item · s save order · esc cancel"
	case items.ModeDragging:
		return "j/k choose folder · enter drop · esc cancel"
	}
	return "j/k navigate · l enter · h back · r reorder · m move · Y yank url · d delete · q quit"
}
