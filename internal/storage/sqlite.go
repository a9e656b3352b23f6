package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marks-app/marks/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	// Enable foreign keys and set pragmas for performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema: a single owner-scoped items table.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY NOT NULL,
			owner_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('category', 'folder', 'bookmark')),
			name TEXT NOT NULL,
			icon TEXT,
			parent_id TEXT REFERENCES items(id),
			url TEXT,
			rank INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id);
		CREATE INDEX IF NOT EXISTS idx_items_parent_id ON items(parent_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateItem persists a new item with a generated id.
func (s *SQLiteStore) CreateItem(ownerID string, params model.NewItemParams, rank int) (model.Item, error) {
	item := model.Item{
		ID:        model.GenerateID(),
		OwnerID:   ownerID,
		Kind:      params.Kind,
		Name:      params.Name,
		Icon:      params.Icon,
		ParentID:  params.ParentID,
		URL:       params.URL,
		Rank:      rank,
		CreatedAt: time.Now(),
	}

	var icon, url sql.NullString
	if item.Icon != "" {
		icon = sql.NullString{String: item.Icon, Valid: true}
	}
	if item.URL != "" {
		url = sql.NullString{String: item.URL, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO items (id, owner_id, kind, name, icon, parent_id, url, rank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.OwnerID, string(item.Kind), item.Name, icon, item.ParentID, url,
		item.Rank, item.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	return item, nil
}

// GetItems returns all of one owner's items ordered by rank, then id.
func (s *SQLiteStore) GetItems(ownerID string) ([]model.Item, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, kind, name, icon, parent_id, url, rank, created_at
		FROM items
		WHERE owner_id = ?
		ORDER BY rank, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	return items, nil
}

// GetItem returns a single owned item.
func (s *SQLiteStore) GetItem(ownerID, id string) (model.Item, error) {
	row := s.db.QueryRow(`
		SELECT id, owner_id, kind, name, icon, parent_id, url, rank, created_at
		FROM items
		WHERE owner_id = ? AND id = ?
	`, ownerID, id)

	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return model.Item{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	return item, nil
}

// scanItem reads one items row through the given scan function.
func scanItem(scan func(dest ...any) error) (model.Item, error) {
	var item model.Item
	var kind string
	var icon, parentID, url sql.NullString
	var createdAt string

	if err := scan(&item.ID, &item.OwnerID, &kind, &item.Name, &icon, &parentID, &url,
		&item.Rank, &createdAt); err != nil {
		return model.Item{}, err
	}

	item.Kind = model.Kind(kind)
	if icon.Valid {
		item.Icon = icon.String
	}
	if parentID.Valid {
		item.ParentID = &parentID.String
	}
	if url.Valid {
		item.URL = url.String
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return item, nil
}

// UpdateItem applies the non-nil fields of the update.
func (s *SQLiteStore) UpdateItem(ownerID, id string, fields ItemUpdate) error {
	var sets []string
	var args []any

	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}
	if fields.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *fields.Icon)
	}
	if fields.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *fields.URL)
	}
	if fields.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *fields.ParentID)
	}
	if fields.Rank != nil {
		sets = append(sets, "rank = ?")
		args = append(args, *fields.Rank)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id, ownerID)
	res, err := s.db.Exec(
		"UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?",
		args...)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	return nil
}

// DeleteItem removes a single owned item.
func (s *SQLiteStore) DeleteItem(ownerID, id string) error {
	res, err := s.db.Exec("DELETE FROM items WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	return nil
}

// SetRanks writes rank i+1 for orderedIDs[i]. The whole reorder runs in one
// transaction so a partial write can never leave mixed ranks behind.
func (s *SQLiteStore) SetRanks(ownerID string, orderedIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE items SET rank = ? WHERE id = ? AND owner_id = ?")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	defer stmt.Close()

	for i, id := range orderedIDs {
		res, err := stmt.Exec(i+1, id, ownerID)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrStorage, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", model.ErrNotFound, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	return nil
}

// DefaultSQLitePath returns the default database path: ~/.config/marks/marks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks", "marks.db"), nil
}
