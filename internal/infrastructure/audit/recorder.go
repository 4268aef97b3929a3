// Package audit asynchronously persists session lifecycle events. Recording
// is best-effort: a full buffer or a failing sink never blocks or fails the
// session path.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cobros/console-gateway/internal/core/domain"
)

const channelBuffer = 64

// Sink is the persistence backend for audit events.
type Sink interface {
	Insert(ctx context.Context, event domain.SessionEvent) error
}

// Recorder buffers events on a channel and writes them from a single worker
// goroutine. It implements ports.AuditRecorder.
type Recorder struct {
	events chan domain.SessionEvent
	sink   Sink
	log    zerolog.Logger
}

// NewRecorder creates a Recorder writing to sink.
func NewRecorder(sink Sink, log zerolog.Logger) *Recorder {
	return &Recorder{
		events: make(chan domain.SessionEvent, channelBuffer),
		sink:   sink,
		log:    log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled; buffered events still in flight at that point are discarded.
func (r *Recorder) Start(ctx context.Context) {
	go r.run(ctx)
}

// Record enqueues an event without blocking. When the buffer is full the
// event is dropped and logged.
func (r *Recorder) Record(event domain.SessionEvent) {
	select {
	case r.events <- event:
	default:
		r.log.Warn().
			Str("kind", string(event.Kind)).
			Msg("audit buffer full, event dropped")
	}
}

func (r *Recorder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			if err := r.sink.Insert(ctx, event); err != nil {
				r.log.Error().Err(err).
					Str("kind", string(event.Kind)).
					Str("username", event.Username).
					Msg("audit event write failed")
			}
		}
	}
}
