// Package switcher wires browser events to bar switching: it gates store
// writes on the idle state, debounces shortcuts, picks the target bar and
// follows workspace changes of the main window.
package switcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/bars/internal/cycle"
	"github.com/nikbrunner/bars/internal/idle"
	"github.com/nikbrunner/bars/internal/logging"
	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/shortcut"
	"github.com/nikbrunner/bars/internal/workspace"
)

// BookmarkStore is the bookmark tree the orchestrator switches bars in.
type BookmarkStore interface {
	CustomDirectoryID(ctx context.Context) (string, error)
	DirectoryID(ctx context.Context) (string, error)
	FindFolder(ctx context.Context, id string) (model.Bar, error)
	ActiveBar(ctx context.Context, workspaceID string) (model.Bar, error)
	ExchangeBars(ctx context.Context, activate, deactivate string) error
	Install(ctx context.Context) error
	Children(ctx context.Context) ([]model.Node, error)
	AssignWorkspaceBar(ctx context.Context, workspaceID, barID string) error
}

// WorkspaceState persists the id of the last active workspace.
type WorkspaceState interface {
	LastWorkspaceID(ctx context.Context) (string, error)
	UpdateLastWorkspaceID(ctx context.Context, id string) error
}

// Params holds parameters for creating an Orchestrator.
type Params struct {
	Store             BookmarkStore
	State             WorkspaceState
	Debounce          time.Duration // shortcut quiet period, defaults to shortcut.DefaultDelay
	IdlePoll          time.Duration // idle gate poll interval, defaults to idle.DefaultPollInterval
	WorkspaceTracking bool
	Logger            zerolog.Logger
}

// Orchestrator owns the idle state, the pending shortcut and the main window.
type Orchestrator struct {
	store             BookmarkStore
	state             WorkspaceState
	gate              *idle.Gate
	debouncer         *shortcut.Debouncer
	tracker           workspace.Tracker
	workspaceTracking bool
	logger            zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	dirID string
}

// New creates an Orchestrator. Call Close to drop a pending shortcut.
func New(params Params) *Orchestrator {
	// Debounced shortcuts log through the orchestrator's logger.
	ctx, cancel := context.WithCancel(logging.WithContext(context.Background(), params.Logger))
	o := &Orchestrator{
		store:             params.Store,
		state:             params.State,
		gate:              idle.NewGate(params.IdlePoll),
		workspaceTracking: params.WorkspaceTracking,
		logger:            params.Logger,
		ctx:               ctx,
		cancel:            cancel,
	}
	o.debouncer = shortcut.NewDebouncer(ctx, params.Debounce, o.runShortcut)
	return o
}

// Start primes the custom directory lookup.
func (o *Orchestrator) Start(ctx context.Context) error {
	return o.refreshDirectory(ctx)
}

// Close drops a pending shortcut and cancels debounced work that is waiting
// on the idle gate.
func (o *Orchestrator) Close() {
	o.debouncer.Stop()
	o.cancel()
}

// HandleIdle records a new idle state.
func (o *Orchestrator) HandleIdle(state idle.State) {
	o.logger.Debug().Str("state", string(state)).Msg("idle state changed")
	o.gate.HandleIdle(state)
}

// IdleState returns the last recorded idle state.
func (o *Orchestrator) IdleState() idle.State {
	return o.gate.State()
}

// HandleBookmarkChanged refreshes the directory lookup when a folder changed.
func (o *Orchestrator) HandleBookmarkChanged(ctx context.Context, ev BookmarkChanged) error {
	if err := o.gate.WaitForActive(ctx); err != nil {
		return err
	}
	if ev.Info.URL != "" {
		return nil
	}
	return o.refreshDirectory(ctx)
}

// HandleBookmarkMoved refreshes the directory lookup when a folder moved.
func (o *Orchestrator) HandleBookmarkMoved(ctx context.Context, ev BookmarkMoved) error {
	if err := o.gate.WaitForActive(ctx); err != nil {
		return err
	}

	if _, err := o.store.FindFolder(ctx, ev.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			o.logger.Debug().Str("id", ev.ID).Msg("moved node is not a folder")
			return nil
		}
		return fmt.Errorf("find moved folder: %w", err)
	}
	return o.refreshDirectory(ctx)
}

// HandleBookmarkRemoved reinstalls when the custom directory itself was
// removed and otherwise re-resolves the active bar.
func (o *Orchestrator) HandleBookmarkRemoved(ctx context.Context, ev BookmarkRemoved) error {
	if err := o.gate.WaitForActive(ctx); err != nil {
		return err
	}
	if ev.RemoveInfo.Node.URL != "" {
		return nil
	}

	dirID, err := o.directoryID(ctx)
	if err != nil {
		return err
	}

	if ev.ID == dirID {
		o.logger.Info().Str("id", ev.ID).Msg("custom directory removed, reinstalling")
		if err := o.store.Install(ctx); err != nil {
			return fmt.Errorf("install: %w", err)
		}
		return o.refreshDirectory(ctx)
	}

	bar, err := o.store.ActiveBar(ctx, "")
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			o.logger.Debug().Msg("no active bar after removal")
			return nil
		}
		return fmt.Errorf("active bar: %w", err)
	}
	o.logger.Debug().Str("bar", bar.Title).Msg("active bar after removal")
	return nil
}

// HandleShortcut schedules a shortcut command. A burst of commands runs once,
// with the last command, after the debounce delay.
func (o *Orchestrator) HandleShortcut(cmd shortcut.Command) error {
	if _, err := shortcut.Parse(cmd); err != nil {
		return err
	}
	o.debouncer.Trigger(cmd)
	return nil
}

func (o *Orchestrator) runShortcut(ctx context.Context, cmd shortcut.Command) {
	move, err := shortcut.Parse(cmd)
	if err != nil {
		o.logger.Error().Err(err).Msg("shortcut")
		return
	}

	bar, switched, err := o.RunMove(ctx, move)
	switch {
	case err != nil:
		o.logger.Error().Err(err).Str("command", string(cmd)).Msg("shortcut failed")
	case switched:
		o.logger.Info().Str("command", string(cmd)).Str("bar", bar.Title).Msg("switched bar")
	}
}

// RunMove waits for the user to be active, selects the target bar and shows
// it. It reports false when there is no bar to switch to.
func (o *Orchestrator) RunMove(ctx context.Context, move cycle.Move) (model.Bar, bool, error) {
	if err := o.gate.WaitForActive(ctx); err != nil {
		return model.Bar{}, false, err
	}

	children, err := o.store.Children(ctx)
	if err != nil {
		return model.Bar{}, false, fmt.Errorf("list bars: %w", err)
	}

	active, err := o.store.ActiveBar(ctx, "")
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Bar{}, false, fmt.Errorf("active bar: %w", err)
	}

	target, ok := cycle.Select(children, active.ID, move)
	if !ok {
		o.logger.Debug().Stringer("move", move).Msg("no bar to switch to")
		return model.Bar{}, false, nil
	}

	if err := o.store.ExchangeBars(ctx, target.Title, active.Title); err != nil {
		return model.Bar{}, false, fmt.Errorf("exchange bars: %w", err)
	}

	if o.workspaceTracking {
		if err := o.rememberBar(ctx, target); err != nil {
			return target, true, err
		}
	}
	return target, true, nil
}

// rememberBar maps the current workspace to bar.
func (o *Orchestrator) rememberBar(ctx context.Context, bar model.Bar) error {
	ws, err := o.state.LastWorkspaceID(ctx)
	if err != nil {
		return fmt.Errorf("last workspace: %w", err)
	}
	if ws == "" {
		return nil
	}
	if err := o.store.AssignWorkspaceBar(ctx, ws, bar.ID); err != nil {
		return fmt.Errorf("assign workspace bar: %w", err)
	}
	return nil
}

// HandleWindowCreated binds the first normal window as the main window.
func (o *Orchestrator) HandleWindowCreated(ev WindowCreated) {
	if o.tracker.ObserveWindowCreated(ev.ID, ev.Type) {
		o.logger.Info().Int("window", ev.ID).Msg("main window bound")
	}
}

// HandleTabActivated treats a tab activation in the main window as a
// workspace switch and shows the bar last used in that workspace.
func (o *Orchestrator) HandleTabActivated(ctx context.Context, ev TabActivated) error {
	if !o.workspaceTracking {
		return nil
	}
	if !o.tracker.IsMainWindow(ev.WindowID) {
		o.logger.Debug().Int("window", ev.WindowID).Msg("tab activated outside main window")
		return nil
	}

	if err := o.gate.WaitForActive(ctx); err != nil {
		return err
	}

	last, err := o.state.LastWorkspaceID(ctx)
	if err != nil {
		return fmt.Errorf("last workspace: %w", err)
	}
	current := ev.WorkspaceID

	currentBar, err := o.store.ActiveBar(ctx, current)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			o.logger.Debug().Str("workspace", current).Msg("no bar for workspace")
			return nil
		}
		return fmt.Errorf("active bar: %w", err)
	}

	lastBar, err := o.store.ActiveBar(ctx, last)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("active bar: %w", err)
	}

	if err := o.store.ExchangeBars(ctx, currentBar.Title, lastBar.Title); err != nil {
		return fmt.Errorf("exchange bars: %w", err)
	}
	if current != "" {
		if err := o.store.AssignWorkspaceBar(ctx, current, currentBar.ID); err != nil {
			return fmt.Errorf("assign workspace bar: %w", err)
		}
	}
	if err := o.state.UpdateLastWorkspaceID(ctx, current); err != nil {
		return fmt.Errorf("update last workspace: %w", err)
	}

	if last != current {
		o.logger.Info().
			Str("from", last).
			Str("to", current).
			Str("bar", currentBar.Title).
			Msg("workspace switched")
	}
	return nil
}

func (o *Orchestrator) refreshDirectory(ctx context.Context) error {
	id, err := o.store.CustomDirectoryID(ctx)
	if err != nil {
		return fmt.Errorf("custom directory: %w", err)
	}

	o.mu.Lock()
	o.dirID = id
	o.mu.Unlock()
	return nil
}

// directoryID returns the cached custom directory id. When it was never
// primed it falls back to the recorded id, which still names a directory
// that was just removed.
func (o *Orchestrator) directoryID(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.dirID != "" {
		return o.dirID, nil
	}
	id, err := o.store.DirectoryID(ctx)
	if err != nil {
		return "", fmt.Errorf("custom directory: %w", err)
	}
	o.dirID = id
	return id, nil
}
