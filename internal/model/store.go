package model

// Meta holds the bookkeeping that turns a plain folder tree into a bar set.
type Meta struct {
	ToolbarID     string            `json:"toolbarId"`
	DirectoryID   string            `json:"directoryId"`
	ActiveBarID   string            `json:"activeBarId"`
	WorkspaceBars map[string]string `json:"workspaceBars"` // workspace id -> bar id
}

// Store holds all bookmarks and folders.
// Slice order is the listing order of children within a folder.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
	Meta      Meta       `json:"meta"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
		Meta:      Meta{WorkspaceBars: map[string]string{}},
	}
}

// Normalize replaces nil collections with empty ones.
func (s *Store) Normalize() {
	if s.Folders == nil {
		s.Folders = []Folder{}
	}
	if s.Bookmarks == nil {
		s.Bookmarks = []Bookmark{}
	}
	if s.Meta.WorkspaceBars == nil {
		s.Meta.WorkspaceBars = map[string]string{}
	}
}

// AddFolder appends a folder at the end of its parent's listing.
func (s *Store) AddFolder(f Folder) {
	s.Folders = append(s.Folders, f)
}

// AddBookmark appends a bookmark at the end of its folder's listing.
func (s *Store) AddBookmark(b Bookmark) {
	s.Bookmarks = append(s.Bookmarks, b)
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for root level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
// Pass nil for root level bookmarks.
func (s *Store) GetBookmarksInFolder(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if ptrEqual(b.FolderID, folderID) {
			result = append(result, b)
		}
	}
	return result
}

// Children lists the direct children of a folder, folders first.
func (s *Store) Children(folderID string) []Node {
	var nodes []Node
	for _, f := range s.GetFoldersInFolder(&folderID) {
		nodes = append(nodes, Node{ID: f.ID, Title: f.Name})
	}
	for _, b := range s.GetBookmarksInFolder(&folderID) {
		nodes = append(nodes, Node{ID: b.ID, Title: b.Title, URL: b.URL})
	}
	return nodes
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// FindFolderByName returns the first folder with the given name under parentID.
func (s *Store) FindFolderByName(parentID *string, name string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].Name == name && ptrEqual(s.Folders[i].ParentID, parentID) {
			return &s.Folders[i]
		}
	}
	return nil
}

// MoveChildren moves every direct child of from into to.
// Moved entries keep their relative order and land after to's existing children.
func (s *Store) MoveChildren(fromID, toID string) {
	if fromID == toID {
		return
	}

	var keptFolders, movedFolders []Folder
	for _, f := range s.Folders {
		if f.ParentID != nil && *f.ParentID == fromID {
			parent := toID
			f.ParentID = &parent
			movedFolders = append(movedFolders, f)
			continue
		}
		keptFolders = append(keptFolders, f)
	}
	s.Folders = append(keptFolders, movedFolders...)

	var keptBookmarks, movedBookmarks []Bookmark
	for _, b := range s.Bookmarks {
		if b.FolderID != nil && *b.FolderID == fromID {
			folder := toID
			b.FolderID = &folder
			movedBookmarks = append(movedBookmarks, b)
			continue
		}
		keptBookmarks = append(keptBookmarks, b)
	}
	s.Bookmarks = append(keptBookmarks, movedBookmarks...)

	s.Normalize()
}

// RemoveFolder deletes a folder together with everything below it.
// Returns false if the folder does not exist.
func (s *Store) RemoveFolder(id string) bool {
	if s.GetFolderByID(id) == nil {
		return false
	}

	doomed := map[string]bool{id: true}
	// Parents may be listed after their children, so repeat until stable.
	for changed := true; changed; {
		changed = false
		for _, f := range s.Folders {
			if f.ParentID != nil && doomed[*f.ParentID] && !doomed[f.ID] {
				doomed[f.ID] = true
				changed = true
			}
		}
	}

	folders := s.Folders[:0]
	for _, f := range s.Folders {
		if !doomed[f.ID] {
			folders = append(folders, f)
		}
	}
	s.Folders = folders

	bookmarks := s.Bookmarks[:0]
	for _, b := range s.Bookmarks {
		if b.FolderID == nil || !doomed[*b.FolderID] {
			bookmarks = append(bookmarks, b)
		}
	}
	s.Bookmarks = bookmarks

	return true
}

// RemoveBookmark deletes a single bookmark. Returns false if it does not exist.
func (s *Store) RemoveBookmark(id string) bool {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
			return true
		}
	}
	return false
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
