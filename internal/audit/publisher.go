package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publisher hands events to the background worker through a buffered
// channel. Emitting never blocks the issuance path: if the buffer is
// full the event is dropped, logged and counted instead.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	dropped prometheus.Counter
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithDropCounter wires a counter incremented for every event dropped
// because the buffer was full.
func WithDropCounter(c prometheus.Counter) PublisherOption {
	return func(p *Publisher) { p.dropped = c }
}

// NewPublisher builds a publisher with the given buffer size and
// returns the inbox a Worker should drain.
func NewPublisher(buffer int, logger *slog.Logger, opts ...PublisherOption) (*Publisher, <-chan Event) {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{inbox: make(chan Event, buffer), logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p, p.inbox
}

// Emit queues an event for persistence, stamping the time if unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		if p.dropped != nil {
			p.dropped.Inc()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"station_id", event.StationID,
				"action", string(event.Action),
			)
		}
	}
	return nil
}
