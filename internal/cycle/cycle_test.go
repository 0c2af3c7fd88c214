package cycle_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nikbrunner/bars/internal/cycle"
	"github.com/nikbrunner/bars/internal/model"
)

func threeBars() []model.Node {
	return []model.Node{
		{ID: "b1", Title: "B1"},
		{ID: "b2", Title: "B2"},
		{ID: "b3", Title: "B3"},
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		children []model.Node
		active   string
		move     cycle.Move
		want     string // expected bar id, "" = no exchange
	}{
		{name: "next from middle", children: threeBars(), active: "b2", move: cycle.Move{Direction: cycle.Next}, want: "b3"},
		{name: "previous from middle", children: threeBars(), active: "b2", move: cycle.Move{Direction: cycle.Previous}, want: "b1"},
		{name: "next wraps to start", children: threeBars(), active: "b3", move: cycle.Move{Direction: cycle.Next}, want: "b1"},
		{name: "previous wraps to end", children: threeBars(), active: "b1", move: cycle.Move{Direction: cycle.Previous}, want: "b3"},
		{name: "next with stale active", children: threeBars(), active: "gone", move: cycle.Move{Direction: cycle.Next}, want: "b1"},
		{name: "previous with stale active", children: threeBars(), active: "gone", move: cycle.Move{Direction: cycle.Previous}, want: "b3"},
		{name: "next with no active", children: threeBars(), active: "", move: cycle.Move{Direction: cycle.Next}, want: "b1"},
		{name: "select 2", children: threeBars(), active: "b1", move: cycle.To(2), want: "b2"},
		{name: "select 9 falls back to first", children: threeBars(), active: "b2", move: cycle.To(9), want: "b1"},
		{name: "select 1", children: threeBars(), active: "b3", move: cycle.To(1), want: "b1"},
		{name: "single bar next", children: threeBars()[:1], active: "b1", move: cycle.Move{Direction: cycle.Next}, want: "b1"},
		{name: "single bar previous", children: threeBars()[:1], active: "b1", move: cycle.Move{Direction: cycle.Previous}, want: "b1"},
		{name: "empty next", children: nil, active: "b1", move: cycle.Move{Direction: cycle.Next}, want: ""},
		{name: "empty previous", children: nil, move: cycle.Move{Direction: cycle.Previous}, want: ""},
		{name: "empty select", children: []model.Node{}, move: cycle.To(1), want: ""},
		{
			name: "loose bookmarks are skipped",
			children: []model.Node{
				{ID: "b1", Title: "B1"},
				{ID: "leaf", Title: "Leaf", URL: "https://example.com"},
				{ID: "b2", Title: "B2"},
			},
			active: "b1",
			move:   cycle.Move{Direction: cycle.Next},
			want:   "b2",
		},
		{
			name:     "only loose bookmarks",
			children: []model.Node{{ID: "leaf", Title: "Leaf", URL: "https://example.com"}},
			move:     cycle.To(1),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cycle.Select(tt.children, tt.active, tt.move)

			if tt.want == "" {
				if ok {
					t.Errorf("expected no target, got %+v", got)
				}
				return
			}
			if !ok {
				t.Fatalf("expected target %q, got none", tt.want)
			}
			if got.ID != tt.want {
				t.Errorf("expected target %q, got %q", tt.want, got.ID)
			}
		})
	}
}

func TestBars_FiltersURLs(t *testing.T) {
	children := []model.Node{
		{ID: "b1", Title: "Work"},
		{ID: "leaf", Title: "Loose", URL: "https://example.com"},
		{ID: "b2", Title: "Home"},
	}

	want := []model.Bar{{ID: "b1", Title: "Work"}, {ID: "b2", Title: "Home"}}
	if diff := cmp.Diff(want, cycle.Bars(children)); diff != "" {
		t.Errorf("bars mismatch (-want +got):\n%s", diff)
	}
}

func TestMove_String(t *testing.T) {
	if got := cycle.To(4).String(); got != "select-4" {
		t.Errorf("expected select-4, got %q", got)
	}
	if got := (cycle.Move{Direction: cycle.Previous}).String(); got != "previous" {
		t.Errorf("expected previous, got %q", got)
	}
}
