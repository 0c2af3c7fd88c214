package host

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/bars/internal/idle"
	"github.com/nikbrunner/bars/internal/shortcut"
	"github.com/nikbrunner/bars/internal/switcher"
)

// Message types sent by the extension.
const (
	TypeBookmarkChanged = "bookmark.changed"
	TypeBookmarkMoved   = "bookmark.moved"
	TypeBookmarkRemoved = "bookmark.removed"
	TypeTabActivated    = "tab.activated"
	TypeWindowCreated   = "window.created"
	TypeIdleChanged     = "idle.changed"
	TypeCommand         = "command"

	TypeAck = "ack"
)

// ErrUnknownType is returned for an envelope type with no event.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the frame layout in both directions.
type Envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Ack answers one inbound envelope.
type Ack struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Event string `json:"event"`
	Error string `json:"error,omitempty"`
}

// Decode turns an envelope into the matching switcher event.
func Decode(env Envelope) (any, error) {
	switch env.Type {
	case TypeBookmarkChanged:
		return decode[switcher.BookmarkChanged](env)
	case TypeBookmarkMoved:
		return decode[switcher.BookmarkMoved](env)
	case TypeBookmarkRemoved:
		return decode[switcher.BookmarkRemoved](env)
	case TypeTabActivated:
		return decode[switcher.TabActivated](env)
	case TypeWindowCreated:
		return decode[switcher.WindowCreated](env)
	case TypeIdleChanged:
		ev, err := decode[switcher.IdleChanged](env)
		if err != nil {
			return nil, err
		}
		if _, err := idle.ParseState(string(ev.State)); err != nil {
			return nil, err
		}
		return ev, nil
	case TypeCommand:
		ev, err := decode[switcher.ShortcutPressed](env)
		if err != nil {
			return nil, err
		}
		if _, err := shortcut.Parse(ev.Command); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decode[T any](env Envelope) (T, error) {
	var ev T
	if len(env.Payload) == 0 {
		return ev, fmt.Errorf("%s: missing payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return ev, fmt.Errorf("%s payload: %w", env.Type, err)
	}
	return ev, nil
}
