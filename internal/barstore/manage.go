package barstore

import (
	"context"
	"fmt"

	"github.com/nikbrunner/bars/internal/model"
)

// ImportedBarName receives bookmarks that were not inside any folder.
const ImportedBarName = "Imported"

// ImportResult summarises an import.
type ImportResult struct {
	Bars      int // bars that received content
	Created   int // bars created by the import
	Bookmarks int
}

// Bars returns all bars in listing order.
func (s *Store) Bars(ctx context.Context) ([]model.Bar, error) {
	var bars []model.Bar
	err := s.view(func(st *model.Store) error {
		bars = barList(st)
		return nil
	})
	return bars, err
}

// ShownBookmarks returns every bookmark currently on the toolbar, depth first.
func (s *Store) ShownBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	err := s.view(func(st *model.Store) error {
		if st.GetFolderByID(st.Meta.ToolbarID) == nil {
			return fmt.Errorf("toolbar: %w", model.ErrNotFound)
		}
		bookmarks = bookmarksBelow(st, st.Meta.ToolbarID)
		return nil
	})
	return bookmarks, err
}

// BarBookmarks returns every bookmark of the named bar, depth first. The
// active bar's bookmarks are read from the toolbar.
func (s *Store) BarBookmarks(ctx context.Context, title string) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	err := s.view(func(st *model.Store) error {
		bar, ok := barByTitle(st, title)
		if !ok {
			return fmt.Errorf("bar %q: %w", title, model.ErrNotFound)
		}
		from := bar.ID
		if bar.ID == st.Meta.ActiveBarID {
			from = st.Meta.ToolbarID
		}
		bookmarks = bookmarksBelow(st, from)
		return nil
	})
	return bookmarks, err
}

// Snapshot returns a copy of the store in which every bar folder holds its
// own bookmarks, including the active one.
func (s *Store) Snapshot(ctx context.Context) (*model.Store, error) {
	var snap *model.Store
	err := s.view(func(st *model.Store) error {
		if _, ok := barByID(st, st.Meta.ActiveBarID); ok {
			st.MoveChildren(st.Meta.ToolbarID, st.Meta.ActiveBarID)
		}
		snap = st
		return nil
	})
	return snap, err
}

// CreateBar adds an empty bar at the end of the directory.
func (s *Store) CreateBar(ctx context.Context, title string) (model.Bar, error) {
	var bar model.Bar
	err := s.update(func(st *model.Store) (bool, error) {
		s.install(st)
		if _, ok := barByTitle(st, title); ok {
			return false, fmt.Errorf("%w: %q", ErrBarExists, title)
		}
		dirID := st.Meta.DirectoryID
		f := model.NewFolder(model.NewFolderParams{Name: title, ParentID: &dirID})
		st.AddFolder(f)
		bar = model.Bar{ID: f.ID, Title: f.Name}
		return true, nil
	})
	return bar, err
}

// RenameBar changes a bar's title. Its id stays the same.
func (s *Store) RenameBar(ctx context.Context, title, newTitle string) (model.Bar, error) {
	var bar model.Bar
	err := s.update(func(st *model.Store) (bool, error) {
		b, ok := barByTitle(st, title)
		if !ok {
			return false, fmt.Errorf("bar %q: %w", title, model.ErrNotFound)
		}
		if title == newTitle {
			bar = b
			return false, nil
		}
		if _, taken := barByTitle(st, newTitle); taken {
			return false, fmt.Errorf("%w: %q", ErrBarExists, newTitle)
		}
		st.GetFolderByID(b.ID).Name = newTitle
		bar = model.Bar{ID: b.ID, Title: newTitle}
		return true, nil
	})
	return bar, err
}

// RemoveNode deletes a folder (recursively) or a bookmark and returns what
// was removed. Removing the active bar also clears the toolbar and shows the
// next bar. Removing the directory leaves repair to Install.
func (s *Store) RemoveNode(ctx context.Context, id string) (model.Node, error) {
	var node model.Node
	err := s.update(func(st *model.Store) (bool, error) {
		if id == st.Meta.ToolbarID {
			return false, fmt.Errorf("%w: %s", ErrProtected, s.toolbarName)
		}

		if b := st.GetBookmarkByID(id); b != nil {
			node = model.Node{ID: b.ID, Title: b.Title, URL: b.URL}
			st.RemoveBookmark(id)
			return true, nil
		}

		f := st.GetFolderByID(id)
		if f == nil {
			return false, fmt.Errorf("node %s: %w", id, model.ErrNotFound)
		}
		node = model.Node{ID: f.ID, Title: f.Name}

		wasActive := id == st.Meta.ActiveBarID
		if wasActive {
			clearFolder(st, st.Meta.ToolbarID)
		}
		st.RemoveFolder(id)
		pruneWorkspaceBars(st)

		if wasActive && st.GetFolderByID(st.Meta.DirectoryID) != nil {
			repairActive(st)
		}
		return true, nil
	})
	return node, err
}

// ImportBars merges imported folders and bookmarks into the bar set. Each
// root-level folder becomes a bar (or joins the bar with the same title),
// loose bookmarks go to the Imported bar.
func (s *Store) ImportBars(ctx context.Context, folders []model.Folder, bookmarks []model.Bookmark) (ImportResult, error) {
	var result ImportResult
	err := s.update(func(st *model.Store) (bool, error) {
		s.install(st)

		touched := map[string]bool{}
		dest := func(title string) string {
			bar, ok := barByTitle(st, title)
			if !ok {
				dirID := st.Meta.DirectoryID
				f := model.NewFolder(model.NewFolderParams{Name: title, ParentID: &dirID})
				st.AddFolder(f)
				bar = model.Bar{ID: f.ID, Title: f.Name}
				result.Created++
			}
			if !touched[bar.ID] {
				touched[bar.ID] = true
				result.Bars++
			}
			if bar.ID == st.Meta.ActiveBarID {
				return st.Meta.ToolbarID
			}
			return bar.ID
		}

		remap := map[string]string{}
		for _, f := range folders {
			if f.ParentID == nil {
				remap[f.ID] = dest(f.Name)
			}
		}

		for _, f := range folders {
			if f.ParentID == nil {
				continue
			}
			if to, ok := remap[*f.ParentID]; ok {
				f.ParentID = &to
			}
			st.AddFolder(f)
		}

		for _, b := range bookmarks {
			switch {
			case b.FolderID == nil:
				to := dest(ImportedBarName)
				b.FolderID = &to
			default:
				if to, ok := remap[*b.FolderID]; ok {
					b.FolderID = &to
				}
			}
			st.AddBookmark(b)
			result.Bookmarks++
		}

		return true, nil
	})
	return result, err
}

// bookmarksBelow collects bookmarks under folderID in listing order,
// descending into subfolders first.
func bookmarksBelow(st *model.Store, folderID string) []model.Bookmark {
	var result []model.Bookmark
	for _, f := range st.GetFoldersInFolder(&folderID) {
		result = append(result, bookmarksBelow(st, f.ID)...)
	}
	result = append(result, st.GetBookmarksInFolder(&folderID)...)
	return result
}

// clearFolder removes everything inside folderID but keeps the folder.
func clearFolder(st *model.Store, folderID string) {
	for _, f := range st.GetFoldersInFolder(&folderID) {
		st.RemoveFolder(f.ID)
	}
	for _, b := range st.GetBookmarksInFolder(&folderID) {
		st.RemoveBookmark(b.ID)
	}
}

// pruneWorkspaceBars drops mappings to bars that no longer exist.
func pruneWorkspaceBars(st *model.Store) {
	for ws, barID := range st.Meta.WorkspaceBars {
		if _, ok := barByID(st, barID); !ok {
			delete(st.Meta.WorkspaceBars, ws)
		}
	}
}
