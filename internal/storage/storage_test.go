package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/storage"
)

func stringPtr(s string) *string { return &s }

// sampleStore returns a store with a toolbar, a custom directory and two bars.
func sampleStore() *model.Store {
	store := model.NewStore()
	store.AddFolder(model.Folder{ID: "toolbar", Name: "Bookmarks Bar"})
	store.AddFolder(model.Folder{ID: "dir", Name: "Bookmark Bars"})
	store.AddFolder(model.Folder{ID: "work", Name: "Work", ParentID: stringPtr("dir")})
	store.AddFolder(model.Folder{ID: "home", Name: "Home", ParentID: stringPtr("dir")})
	store.AddBookmark(model.Bookmark{ID: "b1", Title: "Go", URL: "https://go.dev", FolderID: stringPtr("toolbar")})
	store.AddBookmark(model.Bookmark{ID: "b2", Title: "News", URL: "https://news.example", FolderID: stringPtr("home")})
	store.Meta = model.Meta{
		ToolbarID:     "toolbar",
		DirectoryID:   "dir",
		ActiveBarID:   "work",
		WorkspaceBars: map[string]string{"ws-1": "work"},
	}
	return store
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bars.json")

	s := storage.NewJSONStorage(path)
	if err := s.Save(sampleStore()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("store file was not created")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(loaded.Folders) != 4 {
		t.Errorf("expected 4 folders, got %d", len(loaded.Folders))
	}
	if len(loaded.Bookmarks) != 2 {
		t.Errorf("expected 2 bookmarks, got %d", len(loaded.Bookmarks))
	}
	if loaded.Meta.ActiveBarID != "work" {
		t.Errorf("expected active bar 'work', got %q", loaded.Meta.ActiveBarID)
	}
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "nonexistent.json"))

	store, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	if len(store.Folders) != 0 || len(store.Bookmarks) != 0 {
		t.Error("expected empty store for missing file")
	}
	if store.Meta.WorkspaceBars == nil {
		t.Error("expected initialized workspace map")
	}
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bars.json")

	s := storage.NewJSONStorage(path)
	if err := s.Save(model.NewStore()); err != nil {
		t.Fatalf("failed to save with nested dir: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("store file was not created in nested directory")
	}
}

func TestJSONStorage_PreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")

	store := &model.Store{
		Folders: []model.Folder{
			{ID: "f1", Name: "First"},
			{ID: "f2", Name: "Second"},
			{ID: "f3", Name: "Third"},
		},
	}

	s := storage.NewJSONStorage(path)
	if err := s.Save(store); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	expectedNames := []string{"First", "Second", "Third"}
	for i, name := range expectedNames {
		if loaded.Folders[i].Name != name {
			t.Errorf("order not preserved: expected %q at position %d, got %q",
				name, i, loaded.Folders[i].Name)
		}
	}
}

func TestJSONStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.NewJSONStorage(path).Load(); err == nil {
		t.Error("expected error for corrupt store file")
	}
}

func TestOpenStorage_Backends(t *testing.T) {
	dir := t.TempDir()

	cfg := storage.DefaultConfig(dir)
	s, err := storage.OpenStorage(&cfg)
	if err != nil {
		t.Fatalf("failed to open sqlite backend: %v", err)
	}
	if _, ok := s.(*storage.SQLiteStorage); !ok {
		t.Errorf("expected *SQLiteStorage, got %T", s)
	}
	s.Close()

	cfg.Backend = storage.BackendJSON
	s, err = storage.OpenStorage(&cfg)
	if err != nil {
		t.Fatalf("failed to open json backend: %v", err)
	}
	if _, ok := s.(*storage.JSONStorage); !ok {
		t.Errorf("expected *JSONStorage, got %T", s)
	}

	cfg.Backend = "postgres"
	if _, err := storage.OpenStorage(&cfg); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
