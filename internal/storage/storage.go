package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/nikbrunner/bars/internal/model"
)

// ErrUnknownBackend is returned for a config backend other than sqlite or json.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage defines the interface for persisting bookmarks.
type Storage interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
	Close() error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the store from the JSON file.
// Returns an empty store if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStore(), nil
		}
		return nil, err
	}

	var store model.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	store.Normalize()

	return &store, nil
}

// Save writes the store to the JSON file.
// The file is replaced atomically so a crash never leaves half a store behind.
func (s *JSONStorage) Save(store *model.Store) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}

	return atomic.WriteFile(s.path, bytes.NewReader(data))
}

// Close implements Storage. JSON storage holds no resources.
func (s *JSONStorage) Close() error {
	return nil
}

// DefaultDataDir returns ~/.config/bars.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bars"), nil
}

// OpenStorage opens the backend selected by the config.
func OpenStorage(cfg *Config) (Storage, error) {
	switch cfg.Backend {
	case BackendSQLite:
		return NewSQLiteStorage(cfg.StorePath)
	case BackendJSON:
		return NewJSONStorage(cfg.StorePath), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
