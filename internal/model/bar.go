package model

import "errors"

// ErrNotFound is returned when a folder, bar or bookmark does not exist.
var ErrNotFound = errors.New("not found")

// Bar is a switchable set of bookmarks: a folder inside the custom directory.
type Bar struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Node is one child entry of a folder as the store lists it.
// Entries with a URL are leaf bookmarks, everything else is a folder.
type Node struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// IsFolder returns true if the node has no URL.
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// Bar converts a folder node to a Bar.
func (n Node) Bar() Bar {
	return Bar{ID: n.ID, Title: n.Title}
}
