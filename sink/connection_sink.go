package sink

import (
	"context"
	"log/slog"
	"sync"

	"sanctuary/domain/event"
	"sanctuary/observability"
)

// ConnectionSink buffers outbound events for one connection.
// The transport owner drains Events and writes them to the wire.
type ConnectionSink struct {
	Events     chan event.Event
	done       chan struct{}
	closeOnce  sync.Once
	log        *slog.Logger
	monitoring *observability.Monitoring
}

func NewConnectionSink(bufferSize int, log *slog.Logger, monitoring *observability.Monitoring) *ConnectionSink {
	return &ConnectionSink{
		Events:     make(chan event.Event, bufferSize),
		done:       make(chan struct{}),
		log:        log,
		monitoring: monitoring,
	}
}

// Consume is called by room broadcasts and directed sends.
// It never blocks: when the buffer is full the event is dropped for this
// connection only, so one slow reader cannot stall a whole room.
func (s *ConnectionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.done:
		return nil
	default:
	}
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("Connection buffer full, dropping event", "event", e.Name)
		if s.monitoring != nil {
			s.monitoring.IncrEventsDropped()
		}
		return nil
	}
}

// Done is closed once the connection is torn down.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

// Close stops accepting events. Safe to call more than once.
func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
