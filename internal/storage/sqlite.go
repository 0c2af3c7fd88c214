package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bars/internal/model"
)

const currentSchemaVersion = 1

const (
	metaToolbarID     = "toolbar_id"
	metaDirectoryID   = "directory_id"
	metaActiveBarID   = "active_bar_id"
	metaWorkspaceBars = "workspace_bars"
)

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < currentSchemaVersion {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			folder_id TEXT,
			position INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_folder_id ON bookmarks(folder_id);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS state (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Store, error) {
	store := model.NewStore()

	rows, err := s.db.Query(`
		SELECT id, name, parent_id
		FROM folders
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Folder
		var parentID sql.NullString

		if err := rows.Scan(&f.ID, &f.Name, &parentID); err != nil {
			return nil, err
		}
		if parentID.Valid {
			f.ParentID = &parentID.String
		}

		store.Folders = append(store.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT id, title, url, folder_id, created_at
		FROM bookmarks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bookmark
		var folderID sql.NullString
		var createdAtStr string

		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &folderID, &createdAtStr); err != nil {
			return nil, err
		}
		if folderID.Valid {
			b.FolderID = &folderID.String
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)

		store.Bookmarks = append(store.Bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadMeta(&store.Meta); err != nil {
		return nil, err
	}
	store.Normalize()

	return store, nil
}

// loadMeta reads the key/value meta table into m.
func (s *SQLiteStorage) loadMeta(m *model.Meta) error {
	rows, err := s.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}

		switch key {
		case metaToolbarID:
			m.ToolbarID = value
		case metaDirectoryID:
			m.DirectoryID = value
		case metaActiveBarID:
			m.ActiveBarID = value
		case metaWorkspaceBars:
			if err := json.Unmarshal([]byte(value), &m.WorkspaceBars); err != nil {
				m.WorkspaceBars = map[string]string{}
			}
		}
	}
	return rows.Err()
}

// Save writes the store to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(store *model.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"bookmarks", "folders", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	folderStmt, err := tx.Prepare(`
		INSERT INTO folders (id, name, parent_id, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	for i, f := range store.Folders {
		if _, err := folderStmt.Exec(f.ID, f.Name, f.ParentID, i); err != nil {
			return err
		}
	}

	bookmarkStmt, err := tx.Prepare(`
		INSERT INTO bookmarks (id, title, url, folder_id, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer bookmarkStmt.Close()

	for i, b := range store.Bookmarks {
		createdAt := b.CreatedAt.Format(time.RFC3339)
		if _, err := bookmarkStmt.Exec(b.ID, b.Title, b.URL, b.FolderID, i, createdAt); err != nil {
			return err
		}
	}

	workspaceBars, err := json.Marshal(store.Meta.WorkspaceBars)
	if err != nil {
		return err
	}
	meta := map[string]string{
		metaToolbarID:     store.Meta.ToolbarID,
		metaDirectoryID:   store.Meta.DirectoryID,
		metaActiveBarID:   store.Meta.ActiveBarID,
		metaWorkspaceBars: string(workspaceBars),
	}
	for key, value := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetState returns the value stored under key in the state table.
// A missing key yields an empty string.
func (s *SQLiteStorage) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetState stores value under key in the state table.
func (s *SQLiteStorage) SetState(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO state (key, value) VALUES (?, ?)", key, value)
	return err
}
