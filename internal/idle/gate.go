// Package idle gates bookmark mutations on the user's idle state.
package idle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the system idle state as reported by the browser.
type State string

const (
	StateActive State = "active"
	StateIdle   State = "idle"
	StateLocked State = "locked"
)

// DefaultPollInterval is how often a waiting operation re-checks the state.
const DefaultPollInterval = time.Second

// ParseState converts the wire representation of an idle state.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateActive, StateIdle, StateLocked:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown idle state %q", s)
	}
}

// Gate holds the last observed idle state and lets mutating operations wait
// until the user is active again.
type Gate struct {
	mu    sync.RWMutex
	state State
	poll  time.Duration
}

// NewGate returns a Gate in the active state.
// A non-positive poll uses DefaultPollInterval.
func NewGate(poll time.Duration) *Gate {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Gate{state: StateActive, poll: poll}
}

// State returns the last observed idle state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// HandleIdle records a new idle state.
func (g *Gate) HandleIdle(state State) {
	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
}

// WaitForActive blocks until the state is active.
// It returns immediately when already active and otherwise re-checks on every
// poll tick. There is no timeout; only ctx cancellation ends the wait early.
func (g *Gate) WaitForActive(ctx context.Context) error {
	if g.State() == StateActive {
		return nil
	}

	ticker := time.NewTicker(g.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if g.State() == StateActive {
				return nil
			}
		}
	}
}
