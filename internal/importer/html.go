// Package importer reads Netscape bookmark HTML as exported by browsers.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bars/internal/model"
)

// Tree is a parsed bookmark file. Root-level entries have a nil parent.
type Tree struct {
	Folders   []model.Folder
	Bookmarks []model.Bookmark
}

// ParseHTML parses Netscape bookmark HTML.
//
// The browser's own toolbar folder (marked PERSONAL_TOOLBAR_FOLDER) is
// unwrapped: its subfolders become root folders and its loose bookmarks
// root bookmarks, so that each one can become a bar.
func ParseHTML(r io.Reader) (Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Tree{}, err
	}

	p := &parser{}
	p.walk(doc)
	return p.tree, nil
}

type parser struct {
	tree Tree

	// Folder ids the current DL belongs to, nil = root.
	stack []*string
	// A folder header waits for the DL that carries its contents.
	pending       *string
	pendingUnwrap bool
}

func (p *parser) parent() *string {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "h3":
			p.folderHeader(n)
			return
		case "a":
			p.bookmark(n)
			return
		case "dl":
			p.list(n)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *parser) folderHeader(n *html.Node) {
	if strings.EqualFold(attr(n, "personal_toolbar_folder"), "true") {
		p.pending = nil
		p.pendingUnwrap = true
		return
	}

	name := textContent(n)
	if name == "" {
		return
	}
	folder := model.NewFolder(model.NewFolderParams{Name: name, ParentID: p.parent()})
	p.tree.Folders = append(p.tree.Folders, folder)
	p.pending = &folder.ID
	p.pendingUnwrap = false
}

func (p *parser) bookmark(n *html.Node) {
	// A folder header followed by a bookmark had no contents list.
	p.pending = nil
	p.pendingUnwrap = false

	href := attr(n, "href")
	if href == "" || strings.HasPrefix(href, "place:") {
		return
	}

	title := textContent(n)
	if title == "" {
		title = href
	}

	createdAt := time.Now()
	if addDate := attr(n, "add_date"); addDate != "" {
		if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
			createdAt = time.Unix(ts, 0)
		}
	}

	p.tree.Bookmarks = append(p.tree.Bookmarks, model.NewBookmark(model.NewBookmarkParams{
		Title:     title,
		URL:       href,
		FolderID:  p.parent(),
		CreatedAt: createdAt,
	}))
}

func (p *parser) list(n *html.Node) {
	pushed := false
	switch {
	case p.pending != nil:
		p.stack = append(p.stack, p.pending)
		pushed = true
	case p.pendingUnwrap:
		p.stack = append(p.stack, p.parent())
		pushed = true
	}
	p.pending = nil
	p.pendingUnwrap = false

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}

	if pushed {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// textContent returns the trimmed text below n.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
