// Package importer turns browser bookmark exports (Netscape bookmark HTML)
// into a flat import plan and materializes it in the store.
package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FolderRecord is a parsed folder before persistence. SyntheticID is local
// to one parse; ParentSID is empty for a top-level folder.
type FolderRecord struct {
	SyntheticID string
	Name        string
	ParentSID   string
}

// BookmarkRecord is a parsed link before persistence. ParentSID is empty
// for a link outside any folder.
type BookmarkRecord struct {
	SyntheticID string
	Name        string
	URL         string
	ParentSID   string
}

// Doc is the parsed import plan.
type Doc struct {
	Folders   []FolderRecord
	Bookmarks []BookmarkRecord
}

// Empty reports whether the plan contains nothing to create.
func (d *Doc) Empty() bool {
	return len(d.Folders) == 0 && len(d.Bookmarks) == 0
}

// Parse walks Netscape bookmark HTML depth-first. H3 nodes become folder
// records, A nodes become bookmark records, everything else is ignored.
// Synthetic ids come from a counter scoped to this call, so parsing the same
// document twice yields identical plans. Markup that does not contain any
// recognizable nodes yields an empty plan, not an error.
func Parse(r io.Reader) (*Doc, error) {
	root, err := html.Parse(r)
	if err != nil {
		// html.Parse recovers from almost anything; treat a hard
		// failure as an empty plan per the import contract.
		return &Doc{}, nil
	}

	doc := &Doc{}
	nextFolder, nextBookmark := 0, 0

	// Track the enclosing folder while descending
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on the next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := textContent(n)
				if name == "" {
					name = "Unnamed Folder"
				}
				nextFolder++
				sid := fmt.Sprintf("f%d", nextFolder)
				doc.Folders = append(doc.Folders, FolderRecord{
					SyntheticID: sid,
					Name:        name,
					ParentSID:   topOf(folderStack),
				})
				pendingFolder = sid
				return // don't recurse into H3

			case "a":
				href := attr(n, "href")
				if href == "" {
					// Links without URL are skipped
					return
				}
				name := textContent(n)
				if name == "" {
					name = href
				}
				nextBookmark++
				doc.Bookmarks = append(doc.Bookmarks, BookmarkRecord{
					SyntheticID: fmt.Sprintf("b%d", nextBookmark),
					Name:        name,
					URL:         href,
					ParentSID:   topOf(folderStack),
				})
				return // don't recurse into A

			case "dl":
				// A DL opens the contents of the folder declared by
				// the preceding H3, if any
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(root)
	return doc, nil
}

func topOf(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

// textContent returns the trimmed text content of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if strings.ToLower(a.Key) == key {
			return a.Val
		}
	}
	return ""
}
