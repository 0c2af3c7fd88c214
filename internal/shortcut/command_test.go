package shortcut_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/bars/internal/cycle"
	"github.com/nikbrunner/bars/internal/shortcut"
)

func TestParse(t *testing.T) {
	tests := []struct {
		cmd  shortcut.Command
		want cycle.Move
	}{
		{cmd: shortcut.NextBar, want: cycle.Move{Direction: cycle.Next}},
		{cmd: shortcut.PreviousBar, want: cycle.Move{Direction: cycle.Previous}},
		{cmd: "switch-to-1", want: cycle.To(1)},
		{cmd: "switch-to-9", want: cycle.To(9)},
		{cmd: shortcut.SwitchTo(4), want: cycle.To(4)},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmd), func(t *testing.T) {
			got, err := shortcut.Parse(tt.cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.cmd, got, tt.want)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, cmd := range []shortcut.Command{"", "next", "switch-to-0", "switch-to-10", "switch-to-x", "switch-to-"} {
		t.Run(string(cmd), func(t *testing.T) {
			if _, err := shortcut.Parse(cmd); !errors.Is(err, shortcut.ErrUnknownCommand) {
				t.Errorf("Parse(%q) error = %v, want ErrUnknownCommand", cmd, err)
			}
		})
	}
}
