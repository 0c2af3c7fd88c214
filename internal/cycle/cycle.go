// Package cycle decides which bar becomes active for a requested move.
package cycle

import (
	"fmt"

	"github.com/nikbrunner/bars/internal/model"
)

// Direction is the kind of move requested by a shortcut.
type Direction int

const (
	Next Direction = iota
	Previous
	Direct // jump to a 1-based position
)

// MaxIndex is the highest position reachable with a direct move.
const MaxIndex = 9

// Move is a requested bar change.
type Move struct {
	Direction Direction
	Index     int // 1-based, only for Direct
}

// To returns a direct move to the 1-based position n.
func To(n int) Move {
	return Move{Direction: Direct, Index: n}
}

func (m Move) String() string {
	switch m.Direction {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return fmt.Sprintf("select-%d", m.Index)
	}
}

// Bars filters the children of the custom directory down to bars.
// Entries with a URL are loose bookmarks, not bars.
func Bars(children []model.Node) []model.Bar {
	bars := make([]model.Bar, 0, len(children))
	for _, n := range children {
		if n.IsFolder() {
			bars = append(bars, n.Bar())
		}
	}
	return bars
}

// Select returns the bar to activate. ok is false when there are no bars,
// in which case nothing should be exchanged.
//
// An activeID that is not in the list counts as position -1: next lands on
// the first bar and previous on the last one.
func Select(children []model.Node, activeID string, move Move) (target model.Bar, ok bool) {
	bars := Bars(children)
	if len(bars) == 0 {
		return model.Bar{}, false
	}

	first := bars[0]
	last := bars[len(bars)-1]

	switch move.Direction {
	case Direct:
		if move.Index >= 1 && move.Index <= len(bars) {
			return bars[move.Index-1], true
		}
		return first, true

	case Next:
		current := indexOf(bars, activeID)
		if current == -1 {
			return first, true
		}
		if current+1 < len(bars) {
			return bars[current+1], true
		}
		return first, true

	case Previous:
		current := indexOf(bars, activeID)
		if current == -1 {
			return last, true
		}
		if current-1 >= 0 {
			return bars[current-1], true
		}
		return last, true
	}

	return model.Bar{}, false
}

// indexOf returns the position of the bar with id, or -1.
func indexOf(bars []model.Bar, id string) int {
	for i, b := range bars {
		if b.ID == id {
			return i
		}
	}
	return -1
}
