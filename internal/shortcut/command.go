// Package shortcut parses shortcut commands and coalesces bursts of them.
package shortcut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikbrunner/bars/internal/cycle"
)

// ErrUnknownCommand is returned for a command string no shortcut maps to.
var ErrUnknownCommand = errors.New("unknown shortcut command")

// Command is a shortcut command as registered with the browser.
type Command string

const (
	NextBar     Command = "next-bar"
	PreviousBar Command = "previous-bar"

	switchPrefix = "switch-to-"
)

// SwitchTo returns the command selecting the bar at 1-based position n.
func SwitchTo(n int) Command {
	return Command(switchPrefix + strconv.Itoa(n))
}

// Parse maps a command string to a bar move.
func Parse(cmd Command) (cycle.Move, error) {
	switch cmd {
	case NextBar:
		return cycle.Move{Direction: cycle.Next}, nil
	case PreviousBar:
		return cycle.Move{Direction: cycle.Previous}, nil
	}

	digits, ok := strings.CutPrefix(string(cmd), switchPrefix)
	if !ok || len(digits) != 1 {
		return cycle.Move{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > cycle.MaxIndex {
		return cycle.Move{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return cycle.To(n), nil
}
