// Package state persists the small amount of process-durable switcher state:
// the workspace that was active before the current one.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

const keyLastWorkspaceID = "last_workspace_id"

// File keeps state in a JSON file next to the bookmark store.
type File struct {
	mu   sync.Mutex
	path string
}

type fileData struct {
	LastWorkspaceID string `json:"lastWorkspaceId"`
}

// NewFile creates a File backed by path.
func NewFile(path string) *File {
	return &File{path: path}
}

// LastWorkspaceID returns the recorded workspace id, or "" if none.
func (f *File) LastWorkspaceID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", err
	}
	return data.LastWorkspaceID, nil
}

// UpdateLastWorkspaceID records id as the last active workspace.
func (f *File) UpdateLastWorkspaceID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	data.LastWorkspaceID = id

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(f.path, bytes.NewReader(raw))
}

func (f *File) read() (fileData, error) {
	var data fileData

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return data, nil
		}
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse state %s: %w", f.path, err)
	}
	return data, nil
}

// KV is the key/value surface offered by the SQLite backend.
type KV interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

// DB keeps state in the store database's state table.
type DB struct {
	kv KV
}

// NewDB wraps a key/value backend.
func NewDB(kv KV) *DB {
	return &DB{kv: kv}
}

// LastWorkspaceID returns the recorded workspace id, or "" if none.
func (d *DB) LastWorkspaceID(ctx context.Context) (string, error) {
	return d.kv.GetState(keyLastWorkspaceID)
}

// UpdateLastWorkspaceID records id as the last active workspace.
func (d *DB) UpdateLastWorkspaceID(ctx context.Context, id string) error {
	return d.kv.SetState(keyLastWorkspaceID, id)
}
