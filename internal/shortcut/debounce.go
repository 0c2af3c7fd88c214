package shortcut

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last shortcut before it runs.
const DefaultDelay = 100 * time.Millisecond

// Action is the deferred work run with the last command of a burst.
type Action func(ctx context.Context, cmd Command)

// pending is the Pending(cmd, timer) state; a nil *pending is Idle.
type pending struct {
	cmd   Command
	timer *time.Timer
	gen   uint64
}

// Debouncer coalesces a burst of commands into one Action call carrying the
// last command. Each Trigger cancels the outstanding timer and starts a new one.
type Debouncer struct {
	ctx    context.Context
	action Action
	delay  time.Duration

	mu      sync.Mutex
	pending *pending
	gen     uint64
}

// NewDebouncer creates a Debouncer. ctx is handed to every Action call.
// A non-positive delay uses DefaultDelay.
func NewDebouncer(ctx context.Context, delay time.Duration, action Action) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{ctx: ctx, action: action, delay: delay}
}

// Trigger records cmd as the latest command and restarts the quiet period.
func (d *Debouncer) Trigger(cmd Command) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.timer.Stop()
	}

	// A timer that already fired but lost the race for mu sees a newer
	// generation in fire and does nothing.
	d.gen++
	gen := d.gen
	d.pending = &pending{cmd: cmd, gen: gen}
	d.pending.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a command is waiting for its timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop drops the pending command, if any, without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.timer.Stop()
		d.pending = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.pending == nil || d.pending.gen != gen {
		d.mu.Unlock()
		return
	}
	cmd := d.pending.cmd
	d.pending = nil
	d.mu.Unlock()

	d.action(d.ctx, cmd)
}
