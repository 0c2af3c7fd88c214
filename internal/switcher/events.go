package switcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrunner/bars/internal/idle"
	"github.com/nikbrunner/bars/internal/shortcut"
)

// ErrUnknownEvent is returned by Handle for a value that is not an event.
var ErrUnknownEvent = errors.New("unknown event")

// ChangeInfo carries the fields of a changed bookmark node.
type ChangeInfo struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// BookmarkChanged is sent when a node's title or URL changes.
type BookmarkChanged struct {
	ID   string     `json:"id"`
	Info ChangeInfo `json:"changeInfo"`
}

// BookmarkMoved is sent when a node moves to another position or folder.
type BookmarkMoved struct {
	ID string `json:"id"`
}

// RemovedNode describes the node a removal event refers to.
type RemovedNode struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// RemoveInfo wraps the removed node.
type RemoveInfo struct {
	Node RemovedNode `json:"node"`
}

// BookmarkRemoved is sent after a node and its subtree are deleted.
type BookmarkRemoved struct {
	ID         string     `json:"id"`
	RemoveInfo RemoveInfo `json:"removeInfo"`
}

// TabActivated is sent when a tab gains focus. WorkspaceID identifies the OS
// workspace the tab's window is shown in.
type TabActivated struct {
	WindowID    int    `json:"windowId"`
	WorkspaceID string `json:"workspaceId"`
}

// WindowCreated is sent for every new browser window.
type WindowCreated struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// IdleChanged carries a new idle state.
type IdleChanged struct {
	State idle.State `json:"state"`
}

// ShortcutPressed carries a keyboard shortcut command.
type ShortcutPressed struct {
	Command shortcut.Command `json:"command"`
}

// Handle routes an event value to its handler.
func (o *Orchestrator) Handle(ctx context.Context, event any) error {
	switch ev := event.(type) {
	case BookmarkChanged:
		return o.HandleBookmarkChanged(ctx, ev)
	case BookmarkMoved:
		return o.HandleBookmarkMoved(ctx, ev)
	case BookmarkRemoved:
		return o.HandleBookmarkRemoved(ctx, ev)
	case TabActivated:
		return o.HandleTabActivated(ctx, ev)
	case WindowCreated:
		o.HandleWindowCreated(ev)
		return nil
	case IdleChanged:
		o.HandleIdle(ev.State)
		return nil
	case ShortcutPressed:
		return o.HandleShortcut(ev.Command)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
}
