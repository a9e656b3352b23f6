// Package exporter renders one owner's hierarchy back to Netscape bookmark
// HTML, the same format the importer consumes.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marks-app/marks/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/marks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("marks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders items (one owner's full tree, rank order) as a
// Netscape bookmark file. Categories and folders both become H3 sections;
// the importer flattens them back to the two fixed levels.
func ExportHTML(items []model.Item) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, cat := range model.Siblings(items, nil, model.KindCategory) {
		writeSection(&b, items, cat, 1)
	}

	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeSection writes a category or folder as an H3 with its contents.
func writeSection(b *strings.Builder, items []model.Item, section model.Item, indent int) {
	prefix := strings.Repeat("    ", indent)

	fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(section.Name))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)

	if section.Kind == model.KindCategory {
		for _, folder := range model.Siblings(items, &section.ID, model.KindFolder) {
			writeSection(b, items, folder, indent+1)
		}
	}

	for _, bm := range model.Siblings(items, &section.ID, model.KindBookmark) {
		fmt.Fprintf(b,
			"%s    <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(bm.URL),
			bm.CreatedAt.Unix(),
			html.EscapeString(bm.Name),
		)
	}

	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}
