package shortcut_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/bars/internal/shortcut"
)

// recorder collects the commands an Action was called with.
type recorder struct {
	mu    sync.Mutex
	calls []shortcut.Command
}

func (r *recorder) action(_ context.Context, cmd shortcut.Command) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()
}

func (r *recorder) recorded() []shortcut.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shortcut.Command(nil), r.calls...)
}

const testDelay = 40 * time.Millisecond

func TestDebouncer_BurstRunsLastCommandOnce(t *testing.T) {
	rec := &recorder{}
	d := shortcut.NewDebouncer(context.Background(), testDelay, rec.action)

	burst := []shortcut.Command{shortcut.NextBar, shortcut.NextBar, shortcut.PreviousBar, shortcut.SwitchTo(3)}
	for _, cmd := range burst {
		d.Trigger(cmd)
		time.Sleep(testDelay / 8)
	}

	if !d.Pending() {
		t.Error("expected a pending command right after the burst")
	}

	time.Sleep(4 * testDelay)

	calls := rec.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 execution, got %d: %v", len(calls), calls)
	}
	if calls[0] != shortcut.SwitchTo(3) {
		t.Errorf("expected last command %q, got %q", shortcut.SwitchTo(3), calls[0])
	}
	if d.Pending() {
		t.Error("expected pending marker to be cleared after firing")
	}
}

func TestDebouncer_SpacedInvocationsRunIndependently(t *testing.T) {
	rec := &recorder{}
	d := shortcut.NewDebouncer(context.Background(), testDelay, rec.action)

	d.Trigger(shortcut.NextBar)
	time.Sleep(4 * testDelay)
	d.Trigger(shortcut.PreviousBar)
	time.Sleep(4 * testDelay)

	calls := rec.recorded()
	if len(calls) != 2 {
		t.Fatalf("expected 2 executions, got %d: %v", len(calls), calls)
	}
	if calls[0] != shortcut.NextBar || calls[1] != shortcut.PreviousBar {
		t.Errorf("unexpected execution order: %v", calls)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	rec := &recorder{}
	d := shortcut.NewDebouncer(context.Background(), testDelay, rec.action)

	d.Trigger(shortcut.NextBar)
	d.Stop()
	time.Sleep(4 * testDelay)

	if calls := rec.recorded(); len(calls) != 0 {
		t.Errorf("expected no execution after Stop, got %v", calls)
	}
}

func TestDebouncer_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	got := make(chan any, 1)
	d := shortcut.NewDebouncer(ctx, time.Millisecond, func(ctx context.Context, _ shortcut.Command) {
		got <- ctx.Value(key{})
	})
	d.Trigger(shortcut.NextBar)

	select {
	case v := <-got:
		if v != "marker" {
			t.Errorf("expected context value, got %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("action never ran")
	}
}
