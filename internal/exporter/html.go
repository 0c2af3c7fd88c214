// Package exporter writes bars as Netscape bookmark HTML.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bars/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bars-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bars-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportBars writes every child of the bar directory dirID as a root-level
// entry, so each bar comes back as a bar on import. Pass a store in which
// the active bar holds its own bookmarks.
func ExportBars(store *model.Store, dirID string) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, store, dirID, 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

// writeItems writes the folders then the bookmarks of parentID.
func writeItems(b *strings.Builder, store *model.Store, parentID string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range store.GetFoldersInFolder(&parentID) {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, store, folder.ID, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range store.GetBookmarksInFolder(&parentID) {
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(bookmark.URL),
			bookmark.CreatedAt.Unix(),
			html.EscapeString(bookmark.Title),
		)
	}
}
