package model

import "time"

// Bookmark represents a saved URL inside a folder.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FolderID  *string   `json:"folderId"` // nil = root level
	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title     string
	URL       string
	FolderID  *string
	CreatedAt time.Time // zero = now
}

// NewBookmark creates a Bookmark with a generated UUID.
func NewBookmark(params NewBookmarkParams) Bookmark {
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return Bookmark{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		FolderID:  params.FolderID,
		CreatedAt: createdAt,
	}
}
