// Package barstore keeps named bookmark bars on disk and swaps them onto the
// toolbar folder.
//
// Layout: a toolbar root folder holds what the browser shows, a directory root
// folder holds one folder per bar. The active bar's folder stays empty while
// its bookmarks are on the toolbar.
package barstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikbrunner/bars/internal/logging"
	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/storage"
)

var (
	// ErrBarExists is returned when a bar title is already taken.
	ErrBarExists = errors.New("bar already exists")
	// ErrProtected is returned when removing the toolbar folder.
	ErrProtected = errors.New("folder is protected")
)

// Params holds parameters for creating a Store.
type Params struct {
	Storage        storage.Storage
	ToolbarName    string
	DirectoryName  string
	DefaultBarName string
}

// Store serialises load-mutate-save cycles over a storage backend.
type Store struct {
	mu             sync.Mutex
	storage        storage.Storage
	toolbarName    string
	directoryName  string
	defaultBarName string
}

// New creates a Store. Empty names fall back to the config defaults.
func New(params Params) *Store {
	defaults := storage.DefaultConfig("")
	s := &Store{
		storage:        params.Storage,
		toolbarName:    params.ToolbarName,
		directoryName:  params.DirectoryName,
		defaultBarName: params.DefaultBarName,
	}
	if s.toolbarName == "" {
		s.toolbarName = defaults.ToolbarName
	}
	if s.directoryName == "" {
		s.directoryName = defaults.DirectoryName
	}
	if s.defaultBarName == "" {
		s.defaultBarName = defaults.DefaultBarName
	}
	return s
}

// view loads the store and passes it to fn without saving.
func (s *Store) view(fn func(st *model.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	return fn(st)
}

// update loads the store, applies fn and saves when fn reports a change.
func (s *Store) update(fn func(st *model.Store) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	changed, err := fn(st)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.storage.Save(st); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// Install creates the toolbar, the bar directory and a default bar as needed,
// and repairs a dangling active bar. Running it twice changes nothing.
func (s *Store) Install(ctx context.Context) error {
	var changed bool
	err := s.update(func(st *model.Store) (bool, error) {
		changed = s.install(st)
		return changed, nil
	})
	if err == nil && changed {
		logging.FromContext(ctx).Info().Msg("installed bar layout")
	}
	return err
}

func (s *Store) install(st *model.Store) bool {
	changed := false

	if ensureRoot(st, &st.Meta.ToolbarID, s.toolbarName) {
		changed = true
	}
	if ensureRoot(st, &st.Meta.DirectoryID, s.directoryName) {
		changed = true
	}

	dirID := st.Meta.DirectoryID
	if len(st.GetFoldersInFolder(&dirID)) == 0 {
		st.AddFolder(model.NewFolder(model.NewFolderParams{Name: s.defaultBarName, ParentID: &dirID}))
		changed = true
	}

	if repairActive(st) {
		changed = true
	}
	return changed
}

// ensureRoot makes *id point at an existing root folder, adopting one named
// name or creating it.
func ensureRoot(st *model.Store, id *string, name string) bool {
	if *id != "" && st.GetFolderByID(*id) != nil {
		return false
	}
	if f := st.FindFolderByName(nil, name); f != nil {
		*id = f.ID
		return true
	}
	f := model.NewFolder(model.NewFolderParams{Name: name})
	st.AddFolder(f)
	*id = f.ID
	return true
}

// repairActive makes the first bar active when the recorded one is gone.
// That bar's stored bookmarks join whatever is already on the toolbar.
func repairActive(st *model.Store) bool {
	if _, ok := barByID(st, st.Meta.ActiveBarID); ok {
		return false
	}
	bars := barList(st)
	if len(bars) == 0 {
		if st.Meta.ActiveBarID == "" {
			return false
		}
		st.Meta.ActiveBarID = ""
		return true
	}
	st.MoveChildren(bars[0].ID, st.Meta.ToolbarID)
	st.Meta.ActiveBarID = bars[0].ID
	return true
}

// CustomDirectoryID returns the id of the bar directory, installing the
// layout first if the directory does not exist.
func (s *Store) CustomDirectoryID(ctx context.Context) (string, error) {
	var id string
	var installed bool
	err := s.update(func(st *model.Store) (bool, error) {
		if st.Meta.DirectoryID == "" || st.GetFolderByID(st.Meta.DirectoryID) == nil {
			installed = s.install(st)
		}
		id = st.Meta.DirectoryID
		return installed, nil
	})
	if err == nil && installed {
		logging.FromContext(ctx).Info().Str("directory", id).Msg("bar directory missing, installed")
	}
	return id, err
}

// DirectoryID returns the recorded bar directory id without installing. The
// folder itself may already be gone. Empty before the first install.
func (s *Store) DirectoryID(ctx context.Context) (string, error) {
	var id string
	err := s.view(func(st *model.Store) error {
		id = st.Meta.DirectoryID
		return nil
	})
	return id, err
}

// FindFolder returns the folder with the given id as a Bar.
func (s *Store) FindFolder(ctx context.Context, id string) (model.Bar, error) {
	var bar model.Bar
	err := s.view(func(st *model.Store) error {
		f := st.GetFolderByID(id)
		if f == nil {
			return fmt.Errorf("folder %s: %w", id, model.ErrNotFound)
		}
		bar = model.Bar{ID: f.ID, Title: f.Name}
		return nil
	})
	return bar, err
}

// ActiveBar returns the bar last shown in workspaceID, or the globally active
// bar when the workspace has no live mapping. An empty workspaceID asks for
// the global bar.
func (s *Store) ActiveBar(ctx context.Context, workspaceID string) (model.Bar, error) {
	var bar model.Bar
	err := s.view(func(st *model.Store) error {
		if workspaceID != "" {
			if b, ok := barByID(st, st.Meta.WorkspaceBars[workspaceID]); ok {
				bar = b
				return nil
			}
		}
		b, ok := barByID(st, st.Meta.ActiveBarID)
		if !ok {
			return fmt.Errorf("active bar: %w", model.ErrNotFound)
		}
		bar = b
		return nil
	})
	return bar, err
}

// ExchangeBars shows the bar titled activate. The toolbar contents go back
// into the bar that was active; deactivate names that bar only when no
// active bar is recorded. Activating the active bar is a no-op.
func (s *Store) ExchangeBars(ctx context.Context, activate, deactivate string) error {
	var parked string
	var switched bool
	err := s.update(func(st *model.Store) (bool, error) {
		target, ok := barByTitle(st, activate)
		if !ok {
			return false, fmt.Errorf("bar %q: %w", activate, model.ErrNotFound)
		}
		if target.ID == st.Meta.ActiveBarID {
			return false, nil
		}

		current, ok := barByID(st, st.Meta.ActiveBarID)
		if !ok && deactivate != "" {
			current, ok = barByTitle(st, deactivate)
		}
		if !ok && len(st.Children(st.Meta.ToolbarID)) > 0 {
			// Nowhere to park the shown bookmarks; keep them in a fresh bar.
			dirID := st.Meta.DirectoryID
			name := deactivate
			if name == "" {
				name = s.defaultBarName
			}
			f := model.NewFolder(model.NewFolderParams{Name: name, ParentID: &dirID})
			st.AddFolder(f)
			current, ok = model.Bar{ID: f.ID, Title: f.Name}, true
		}

		if ok && current.ID != target.ID {
			st.MoveChildren(st.Meta.ToolbarID, current.ID)
			parked = current.Title
		}
		st.MoveChildren(target.ID, st.Meta.ToolbarID)
		st.Meta.ActiveBarID = target.ID
		switched = true
		return true, nil
	})
	if err == nil && switched {
		logging.FromContext(ctx).Debug().Str("shown", activate).Str("parked", parked).Msg("exchanged bars")
	}
	return err
}

// Children lists the direct children of the bar directory in order.
func (s *Store) Children(ctx context.Context) ([]model.Node, error) {
	var nodes []model.Node
	err := s.view(func(st *model.Store) error {
		if st.GetFolderByID(st.Meta.DirectoryID) == nil {
			return fmt.Errorf("bar directory: %w", model.ErrNotFound)
		}
		nodes = st.Children(st.Meta.DirectoryID)
		return nil
	})
	return nodes, err
}

// AssignWorkspaceBar records barID as the bar last shown in workspaceID.
func (s *Store) AssignWorkspaceBar(ctx context.Context, workspaceID, barID string) error {
	if workspaceID == "" {
		return nil
	}
	return s.update(func(st *model.Store) (bool, error) {
		if _, ok := barByID(st, barID); !ok {
			return false, fmt.Errorf("bar %s: %w", barID, model.ErrNotFound)
		}
		if st.Meta.WorkspaceBars[workspaceID] == barID {
			return false, nil
		}
		st.Meta.WorkspaceBars[workspaceID] = barID
		return true, nil
	})
}

// barByID returns the bar with the given id if it lives in the directory.
func barByID(st *model.Store, id string) (model.Bar, bool) {
	if id == "" {
		return model.Bar{}, false
	}
	f := st.GetFolderByID(id)
	if f == nil || f.ParentID == nil || *f.ParentID != st.Meta.DirectoryID {
		return model.Bar{}, false
	}
	return model.Bar{ID: f.ID, Title: f.Name}, true
}

// barByTitle returns the first bar with the given title.
func barByTitle(st *model.Store, title string) (model.Bar, bool) {
	dirID := st.Meta.DirectoryID
	f := st.FindFolderByName(&dirID, title)
	if f == nil {
		return model.Bar{}, false
	}
	return model.Bar{ID: f.ID, Title: f.Name}, true
}

// barList returns the bars in listing order.
func barList(st *model.Store) []model.Bar {
	dirID := st.Meta.DirectoryID
	folders := st.GetFoldersInFolder(&dirID)
	bars := make([]model.Bar, 0, len(folders))
	for _, f := range folders {
		bars = append(bars, model.Bar{ID: f.ID, Title: f.Name})
	}
	return bars
}
