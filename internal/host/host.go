// Package host runs the native messaging loop between the browser extension
// and the bar switcher.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/bars/internal/logging"
	"github.com/nikbrunner/bars/internal/switcher"
)

// Handler consumes decoded events.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// Params holds parameters for creating a Server.
type Params struct {
	In      io.Reader
	Out     io.Writer
	Handler Handler
	Logger  zerolog.Logger
}

// Server reads frames from In and writes an ack per frame to Out. Events that
// only record state run before the next frame is read; events that may wait
// on the idle gate run in their own goroutine.
type Server struct {
	in      io.Reader
	out     io.Writer
	handler Handler
	logger  zerolog.Logger

	writeMu  sync.Mutex
	inflight sync.WaitGroup
}

// NewServer creates a Server.
func NewServer(params Params) *Server {
	return &Server{
		in:      params.In,
		out:     params.Out,
		handler: params.Handler,
		logger:  params.Logger,
	}
}

// Serve runs until the input stream ends or ctx is done, then waits for
// running handlers. A clean end of input returns nil.
func (s *Server) Serve(ctx context.Context) error {
	defer s.inflight.Wait()
	ctx = logging.WithContext(ctx, s.logger)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := ReadMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info().Msg("input closed")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.ack(Envelope{}, fmt.Errorf("decode envelope: %w", err))
			continue
		}

		event, err := Decode(env)
		if err != nil {
			s.ack(env, err)
			continue
		}

		if runsInline(event) {
			s.ack(env, s.handler.Handle(ctx, event))
			continue
		}

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.ack(env, s.handler.Handle(ctx, event))
		}()
	}
}

// runsInline reports whether event only updates in-memory state and never
// blocks, so it must take effect in arrival order.
func runsInline(event any) bool {
	switch event.(type) {
	case switcher.WindowCreated, switcher.IdleChanged, switcher.ShortcutPressed:
		return true
	default:
		return false
	}
}

// ack writes the outcome of one envelope. Write failures are only logged;
// the browser side treats a missing ack like an error.
func (s *Server) ack(env Envelope, err error) {
	msg := Ack{ID: env.ID, Type: TypeAck, Event: env.Type}
	logEvent := s.logger.Debug()
	if err != nil {
		msg.Error = err.Error()
		logEvent = s.logger.Warn().Err(err)
	}
	logEvent.Str("event", env.Type).Msg("handled")

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if werr := WriteMessage(s.out, msg); werr != nil {
		s.logger.Error().Err(werr).Str("event", env.Type).Msg("write ack")
	}
}
