package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marks-app/marks/internal/exporter"
	"github.com/marks-app/marks/internal/importer"
	"github.com/marks-app/marks/internal/items"
	"github.com/marks-app/marks/internal/model"
	"github.com/marks-app/marks/internal/search"
	"github.com/marks-app/marks/internal/storage"
	"github.com/marks-app/marks/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "import":
			if len(os.Args) < 4 {
				fmt.Fprintf(os.Stderr, "Usage: marks import <file.html> <category>\n")
				os.Exit(1)
			}
			runImport(os.Args[2], os.Args[3])
			return
		case "add":
			if len(os.Args) < 5 {
				fmt.Fprintf(os.Stderr, "Usage: marks add <category> <name> <url>\n")
				os.Exit(1)
			}
			runAdd(os.Args[2], os.Args[3], os.Args[4])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "list":
			runList()
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `marks - hierarchical bookmark manager

Usage:
  marks                        Open interactive TUI
  marks <query>                Quick search → open best match
  marks add <cat> <name> <url> Add a bookmark to a category
  marks import <file> <cat>    Import browser bookmarks into a category
  marks export [path]          Export bookmarks to HTML
  marks list                   Print the full hierarchy
  marks help                   Show this help

TUI Keybindings:
  j/k         Move down/up
  h/l         Navigate back/forward
  r           Reorder the selected sibling group (s saves, esc cancels)
  m           Move a bookmark into a folder (enter drops, esc cancels)
  Y           Copy URL to clipboard
  d           Delete (cascades for categories and folders)
  q           Quit

Data Storage:
  ~/.config/marks/marks.db (owner set in ~/.config/marks/config.json)
`
	fmt.Print(help)
}

// setup loads config and opens the store and service. The owner id comes
// from the MARKS_OWNER environment variable or the config file.
func setup() (*storage.SQLiteStore, *items.Service, string, *storage.Config) {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	owner := os.Getenv("MARKS_OWNER")
	if owner == "" {
		owner = cfg.Owner
	}
	if owner == "" {
		fmt.Fprintf(os.Stderr, "No owner configured: set MARKS_OWNER or \"owner\" in %s\n", configPath)
		os.Exit(1)
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath, err = storage.DefaultSQLitePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting database path: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	return store, items.NewService(store), owner, cfg
}

// runTUI runs the full interactive TUI.
func runTUI() {
	store, svc, owner, _ := setup()
	defer store.Close()

	app, err := tui.NewApp(tui.AppParams{Service: svc, OwnerID: owner})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// runQuickSearch performs a fuzzy search and opens the best match.
func runQuickSearch(query string) {
	store, svc, owner, _ := setup()
	defer store.Close()

	all, err := svc.List(owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := search.Bookmarks(all, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	if len(results) == 1 {
		fmt.Printf("Opening: %s\n", results[0].Item.Name)
		openURL(results[0].Item.URL)
		return
	}

	// Multiple results - print them, open the best one
	for i, r := range results {
		if i >= 10 {
			break
		}
		fmt.Printf("%2d. %s  %s\n", i+1, r.Item.Name, r.Item.URL)
	}
	fmt.Printf("Opening: %s\n", results[0].Item.Name)
	openURL(results[0].Item.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// runImport handles the import subcommand. The target category is found by
// name, or created if absent.
func runImport(filePath, categoryName string) {
	store, svc, owner, cfg := setup()
	defer store.Close()

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	doc, err := importer.Parse(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing HTML: %v\n", err)
		os.Exit(1)
	}
	if doc.Empty() {
		fmt.Println("Nothing to import")
		return
	}

	category, err := findOrCreateCategory(svc, owner, categoryName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving category: %v\n", err)
		os.Exit(1)
	}

	result, err := importer.Run(store, owner, category.ID, doc, importer.Options{
		ChunkSize: cfg.ImportChunkSize,
		Progress: func(p importer.Progress) {
			if p.BookmarksDone == 0 {
				fmt.Printf("Created %d folders\n", p.FoldersCreated)
				return
			}
			fmt.Printf("Importing bookmarks: %d of %d\n", p.BookmarksDone, p.BookmarksTotal)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import incomplete: %v\n", err)
	}
	fmt.Printf("Imported %d folders, %d bookmarks into %q\n",
		result.FoldersCreated, result.BookmarksCreated, category.Name)
}

// runAdd creates a bookmark directly under a category, creating the
// category first if it does not exist yet.
func runAdd(categoryName, name, url string) {
	store, svc, owner, _ := setup()
	defer store.Close()

	category, err := findOrCreateCategory(svc, owner, categoryName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving category: %v\n", err)
		os.Exit(1)
	}

	if _, err := svc.Create(owner, model.NewItemParams{
		Kind:     model.KindBookmark,
		Name:     name,
		URL:      url,
		ParentID: &category.ID,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating bookmark: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Added %q to %q\n", name, category.Name)
}

// findOrCreateCategory resolves a category by name.
func findOrCreateCategory(svc *items.Service, owner, name string) (model.Item, error) {
	all, err := svc.List(owner)
	if err != nil {
		return model.Item{}, err
	}
	for _, it := range model.Siblings(all, nil, model.KindCategory) {
		if it.Name == name {
			return it, nil
		}
	}
	return svc.Create(owner, model.NewItemParams{
		Kind: model.KindCategory,
		Name: name,
	})
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	store, svc, owner, _ := setup()
	defer store.Close()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting default export path: %v\n", err)
			os.Exit(1)
		}
	}

	all, err := svc.List(owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	html := exporter.ExportHTML(all)
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d items to %s\n", len(all), outputPath)
}

// runList prints the hierarchy as an indented tree.
func runList() {
	store, svc, owner, _ := setup()
	defer store.Close()

	all, err := svc.List(owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	for _, cat := range model.Siblings(all, nil, model.KindCategory) {
		fmt.Println(cat.Name)
		for _, folder := range model.Siblings(all, &cat.ID, model.KindFolder) {
			fmt.Printf("  %s/\n", folder.Name)
			for _, bm := range model.Siblings(all, &folder.ID, model.KindBookmark) {
				fmt.Printf("    %s  %s\n", bm.Name, bm.URL)
			}
		}
		for _, bm := range model.Siblings(all, &cat.ID, model.KindBookmark) {
			fmt.Printf("  %s  %s\n", bm.Name, bm.URL)
		}
	}
}
