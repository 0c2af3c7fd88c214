package idle

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives idle state changes.
type Handler interface {
	HandleIdle(state State)
}

// Monitor polls a Provider and reports idle/active transitions to a Handler.
// It stands in for the browser's idle-state events when those are unavailable.
type Monitor struct {
	provider  Provider
	handler   Handler
	threshold time.Duration
	interval  time.Duration
	logger    zerolog.Logger
}

// MonitorParams holds parameters for creating a Monitor.
type MonitorParams struct {
	Provider  Provider
	Handler   Handler
	Threshold time.Duration // inactivity after which the user counts as idle
	Interval  time.Duration // poll interval, defaults to DefaultPollInterval
	Logger    zerolog.Logger
}

// NewMonitor creates a Monitor.
func NewMonitor(params MonitorParams) *Monitor {
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		provider:  params.Provider,
		handler:   params.Handler,
		threshold: params.Threshold,
		interval:  interval,
		logger:    params.Logger,
	}
}

// Run polls until ctx is done. It returns nil right away when the platform
// cannot report idle time.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := StateActive
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		idleFor, err := m.provider.IdleDuration()
		if errors.Is(err, ErrUnsupported) {
			m.logger.Info().Msg("idle detection unsupported, relying on browser events")
			return nil
		}
		if err != nil {
			m.logger.Warn().Err(err).Msg("idle check failed")
			continue
		}

		state := StateActive
		if idleFor >= m.threshold {
			state = StateIdle
		}
		if state == last {
			continue
		}

		m.logger.Debug().Str("state", string(state)).Dur("idle_for", idleFor).Msg("idle state changed")
		m.handler.HandleIdle(state)
		last = state
	}
}
