package model

import "github.com/google/uuid"

// Folder represents a container for bookmarks and other folders.
// Bars are folders directly below the custom directory.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"` // nil = root level
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	ParentID *string
}

// NewFolder creates a Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:       GenerateUUID(),
		Name:     params.Name,
		ParentID: params.ParentID,
	}
}

// GenerateUUID creates a new UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}
