package switcher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"

	"github.com/nikbrunner/bars/internal/cycle"
	"github.com/nikbrunner/bars/internal/idle"
	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/shortcut"
	"github.com/nikbrunner/bars/internal/switcher"
)

const testDebounce = 40 * time.Millisecond

// fakeStore records every call and answers from in-memory fields.
type fakeStore struct {
	mu        sync.Mutex
	calls     []string
	dirID     string
	children  []model.Node
	folders   map[string]bool
	active    string            // global active bar title
	workspace map[string]string // workspace id -> bar title
	exchanges [][2]string
	assigned  map[string]string
}

func newFakeStore(titles ...string) *fakeStore {
	s := &fakeStore{
		dirID:     "dir",
		folders:   map[string]bool{"dir": true},
		workspace: map[string]string{},
		assigned:  map[string]string{},
	}
	for _, title := range titles {
		s.children = append(s.children, model.Node{ID: "id-" + title, Title: title})
		s.folders["id-"+title] = true
	}
	if len(titles) > 0 {
		s.active = titles[0]
	}
	return s
}

func (s *fakeStore) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *fakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) Exchanges() [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]string(nil), s.exchanges...)
}

func (s *fakeStore) count(call string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (s *fakeStore) CustomDirectoryID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CustomDirectoryID")
	return s.dirID, nil
}

func (s *fakeStore) DirectoryID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DirectoryID")
	return s.dirID, nil
}

func (s *fakeStore) FindFolder(ctx context.Context, id string) (model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("FindFolder")
	if !s.folders[id] {
		return model.Bar{}, model.ErrNotFound
	}
	return model.Bar{ID: id}, nil
}

func (s *fakeStore) ActiveBar(ctx context.Context, workspaceID string) (model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ActiveBar")
	title := s.workspace[workspaceID]
	if title == "" {
		title = s.active
	}
	if title == "" {
		return model.Bar{}, model.ErrNotFound
	}
	return model.Bar{ID: "id-" + title, Title: title}, nil
}

func (s *fakeStore) ExchangeBars(ctx context.Context, activate, deactivate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ExchangeBars")
	s.exchanges = append(s.exchanges, [2]string{activate, deactivate})
	s.active = activate
	return nil
}

func (s *fakeStore) Install(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Install")
	return nil
}

func (s *fakeStore) Children(ctx context.Context) ([]model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Children")
	return s.children, nil
}

func (s *fakeStore) AssignWorkspaceBar(ctx context.Context, workspaceID, barID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("AssignWorkspaceBar")
	s.assigned[workspaceID] = barID
	return nil
}

type fakeState struct {
	mu      sync.Mutex
	last    string
	updates []string
}

func (f *fakeState) LastWorkspaceID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, nil
}

func (f *fakeState) UpdateLastWorkspaceID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = id
	f.updates = append(f.updates, id)
	return nil
}

func newOrchestrator(t *testing.T, store *fakeStore, state *fakeState) *switcher.Orchestrator {
	t.Helper()
	o := switcher.New(switcher.Params{
		Store:             store,
		State:             state,
		Debounce:          testDebounce,
		IdlePoll:          5 * time.Millisecond,
		WorkspaceTracking: true,
		Logger:            zerolog.Nop(),
	})
	t.Cleanup(o.Close)
	return o
}

func TestIdleGate_BlocksStoreAccess(t *testing.T) {
	store := newFakeStore("A")
	o := newOrchestrator(t, store, &fakeState{})
	o.HandleIdle(idle.StateLocked)

	done := make(chan error, 1)
	go func() {
		done <- o.HandleBookmarkChanged(context.Background(), switcher.BookmarkChanged{ID: "x"})
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, len(store.Calls()), 0, "store touched while locked")

	o.HandleIdle(idle.StateActive)
	select {
	case err := <-done:
		assert.NilError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not resume after becoming active")
	}
	assert.DeepEqual(t, store.Calls(), []string{"CustomDirectoryID"})
}

func TestIdleGate_ContextCancel(t *testing.T) {
	store := newFakeStore("A")
	o := newOrchestrator(t, store, &fakeState{})
	o.HandleIdle(idle.StateIdle)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := o.RunMove(ctx, cycle.Move{Direction: cycle.Next})
	assert.Assert(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, len(store.Calls()), 0)
}

func TestHandleBookmarkChanged_IgnoresLeaves(t *testing.T) {
	store := newFakeStore("A")
	o := newOrchestrator(t, store, &fakeState{})

	err := o.HandleBookmarkChanged(context.Background(), switcher.BookmarkChanged{
		ID:   "b1",
		Info: switcher.ChangeInfo{Title: "Go", URL: "https://go.dev"},
	})
	assert.NilError(t, err)
	assert.Equal(t, len(store.Calls()), 0)
}

func TestHandleBookmarkMoved(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want []string
	}{
		{name: "folder refreshes directory", id: "id-A", want: []string{"FindFolder", "CustomDirectoryID"}},
		{name: "leaf is ignored", id: "bookmark", want: []string{"FindFolder"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore("A")
			o := newOrchestrator(t, store, &fakeState{})

			err := o.HandleBookmarkMoved(context.Background(), switcher.BookmarkMoved{ID: tt.id})
			assert.NilError(t, err)
			assert.DeepEqual(t, store.Calls(), tt.want)
		})
	}
}

func TestHandleBookmarkRemoved_DirectoryReinstalls(t *testing.T) {
	store := newFakeStore("A", "B")
	o := newOrchestrator(t, store, &fakeState{})
	ctx := context.Background()
	assert.NilError(t, o.Start(ctx))

	err := o.HandleBookmarkRemoved(ctx, switcher.BookmarkRemoved{
		ID:         "dir",
		RemoveInfo: switcher.RemoveInfo{Node: switcher.RemovedNode{Title: "Bookmark Bars"}},
	})
	assert.NilError(t, err)

	assert.Equal(t, store.count("Install"), 1)
	assert.Equal(t, store.count("ActiveBar"), 0)
}

func TestHandleBookmarkRemoved_DirectoryWithoutStart(t *testing.T) {
	store := newFakeStore("A", "B")
	o := newOrchestrator(t, store, &fakeState{})

	err := o.HandleBookmarkRemoved(context.Background(), switcher.BookmarkRemoved{ID: "dir"})
	assert.NilError(t, err)

	assert.DeepEqual(t, store.Calls(), []string{"DirectoryID", "Install", "CustomDirectoryID"})
}

func TestHandleBookmarkRemoved_OtherFolder(t *testing.T) {
	store := newFakeStore("A", "B")
	o := newOrchestrator(t, store, &fakeState{})

	err := o.HandleBookmarkRemoved(context.Background(), switcher.BookmarkRemoved{ID: "id-B"})
	assert.NilError(t, err)

	assert.Equal(t, store.count("Install"), 0)
	assert.Equal(t, store.count("ActiveBar"), 1)
}

func TestHandleBookmarkRemoved_LeafIgnored(t *testing.T) {
	store := newFakeStore("A")
	o := newOrchestrator(t, store, &fakeState{})

	err := o.HandleBookmarkRemoved(context.Background(), switcher.BookmarkRemoved{
		ID:         "dir",
		RemoveInfo: switcher.RemoveInfo{Node: switcher.RemovedNode{URL: "https://go.dev"}},
	})
	assert.NilError(t, err)
	assert.Equal(t, len(store.Calls()), 0)
}

func TestRunMove(t *testing.T) {
	tests := []struct {
		name     string
		bars     []string
		active   string
		move     cycle.Move
		want     [2]string
		switched bool
	}{
		{name: "next", bars: []string{"A", "B", "C"}, active: "B", move: cycle.Move{Direction: cycle.Next}, want: [2]string{"C", "B"}, switched: true},
		{name: "next wraps", bars: []string{"A", "B", "C"}, active: "C", move: cycle.Move{Direction: cycle.Next}, want: [2]string{"A", "C"}, switched: true},
		{name: "previous wraps", bars: []string{"A", "B", "C"}, active: "A", move: cycle.Move{Direction: cycle.Previous}, want: [2]string{"C", "A"}, switched: true},
		{name: "select out of range", bars: []string{"A", "B"}, active: "B", move: cycle.To(7), want: [2]string{"A", "B"}, switched: true},
		{name: "stale active next", bars: []string{"A", "B"}, active: "", move: cycle.Move{Direction: cycle.Next}, want: [2]string{"A", ""}, switched: true},
		{name: "empty", bars: nil, move: cycle.Move{Direction: cycle.Next}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(tt.bars...)
			store.active = tt.active
			o := newOrchestrator(t, store, &fakeState{})

			bar, switched, err := o.RunMove(context.Background(), tt.move)
			assert.NilError(t, err)
			assert.Equal(t, switched, tt.switched)

			if !tt.switched {
				assert.Equal(t, store.count("ExchangeBars"), 0)
				return
			}
			assert.Equal(t, bar.Title, tt.want[0])
			assert.DeepEqual(t, store.Exchanges(), [][2]string{tt.want})
		})
	}
}

func TestRunMove_RemembersWorkspaceBar(t *testing.T) {
	store := newFakeStore("A", "B")
	state := &fakeState{last: "ws-1"}
	o := newOrchestrator(t, store, state)

	_, _, err := o.RunMove(context.Background(), cycle.Move{Direction: cycle.Next})
	assert.NilError(t, err)
	assert.Equal(t, store.assigned["ws-1"], "id-B")
}

func TestHandleShortcut_BurstRunsOnce(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	o := newOrchestrator(t, store, &fakeState{})

	assert.NilError(t, o.HandleShortcut(shortcut.NextBar))
	assert.NilError(t, o.HandleShortcut(shortcut.NextBar))
	assert.NilError(t, o.HandleShortcut(shortcut.SwitchTo(3)))

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(store.Exchanges()) == 1 {
			return poll.Success()
		}
		return poll.Continue("waiting for exchange, have %d", len(store.Exchanges()))
	}, poll.WithTimeout(time.Second), poll.WithDelay(5*time.Millisecond))

	time.Sleep(2 * testDebounce)
	assert.DeepEqual(t, store.Exchanges(), [][2]string{{"C", "A"}})
}

func TestHandleShortcut_SpacedRunSeparately(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	o := newOrchestrator(t, store, &fakeState{})

	waitFor := func(n int) {
		poll.WaitOn(t, func(poll.LogT) poll.Result {
			if len(store.Exchanges()) == n {
				return poll.Success()
			}
			return poll.Continue("want %d exchanges", n)
		}, poll.WithTimeout(time.Second), poll.WithDelay(5*time.Millisecond))
	}

	assert.NilError(t, o.HandleShortcut(shortcut.NextBar))
	waitFor(1)
	assert.NilError(t, o.HandleShortcut(shortcut.NextBar))
	waitFor(2)

	assert.DeepEqual(t, store.Exchanges(), [][2]string{{"B", "A"}, {"C", "B"}})
}

func TestHandleShortcut_UnknownCommand(t *testing.T) {
	o := newOrchestrator(t, newFakeStore("A"), &fakeState{})

	err := o.HandleShortcut("switch-to-0")
	assert.Assert(t, errors.Is(err, shortcut.ErrUnknownCommand))
}

func TestWorkspace_MainWindowSwitch(t *testing.T) {
	store := newFakeStore("A", "B")
	store.workspace["ws-2"] = "B"
	state := &fakeState{last: "ws-1"}
	o := newOrchestrator(t, store, state)
	ctx := context.Background()

	o.HandleWindowCreated(switcher.WindowCreated{ID: 7, Type: "popup"})
	o.HandleWindowCreated(switcher.WindowCreated{ID: 1, Type: "normal"})
	o.HandleWindowCreated(switcher.WindowCreated{ID: 2, Type: "normal"})

	err := o.HandleTabActivated(ctx, switcher.TabActivated{WindowID: 1, WorkspaceID: "ws-2"})
	assert.NilError(t, err)

	assert.DeepEqual(t, store.Exchanges(), [][2]string{{"B", "A"}})
	assert.Equal(t, store.assigned["ws-2"], "id-B")
	assert.DeepEqual(t, state.updates, []string{"ws-2"})
}

func TestWorkspace_IgnoredActivations(t *testing.T) {
	tests := []struct {
		name     string
		windows  []switcher.WindowCreated
		tracking bool
		windowID int
	}{
		{name: "foreign window", windows: []switcher.WindowCreated{{ID: 1, Type: "normal"}, {ID: 2, Type: "normal"}}, tracking: true, windowID: 2},
		{name: "no main window", tracking: true, windowID: 1},
		{name: "only popups", windows: []switcher.WindowCreated{{ID: 1, Type: "popup"}}, tracking: true, windowID: 1},
		{name: "tracking disabled", windows: []switcher.WindowCreated{{ID: 1, Type: "normal"}}, tracking: false, windowID: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore("A", "B")
			state := &fakeState{last: "ws-1"}
			o := switcher.New(switcher.Params{
				Store:             store,
				State:             state,
				WorkspaceTracking: tt.tracking,
				Logger:            zerolog.Nop(),
			})
			defer o.Close()

			for _, w := range tt.windows {
				o.HandleWindowCreated(w)
			}

			err := o.HandleTabActivated(context.Background(), switcher.TabActivated{WindowID: tt.windowID, WorkspaceID: "ws-2"})
			assert.NilError(t, err)
			assert.Equal(t, len(store.Calls()), 0)
			assert.Equal(t, len(state.updates), 0)
		})
	}
}

func TestHandle_Dispatch(t *testing.T) {
	store := newFakeStore("A")
	o := newOrchestrator(t, store, &fakeState{})
	ctx := context.Background()

	assert.NilError(t, o.Handle(ctx, switcher.IdleChanged{State: idle.StateIdle}))
	assert.Equal(t, o.IdleState(), idle.StateIdle)

	assert.NilError(t, o.Handle(ctx, switcher.IdleChanged{State: idle.StateActive}))
	assert.NilError(t, o.Handle(ctx, switcher.BookmarkMoved{ID: "id-A"}))
	assert.Equal(t, store.count("CustomDirectoryID"), 1)

	err := o.Handle(ctx, "bogus")
	assert.Assert(t, errors.Is(err, switcher.ErrUnknownEvent))
}
