package workers

import (
	"context"
	"log/slog"

	"snappy/contract"
	"snappy/domain/event"
)

// EventFanout broadcasts stored-message events to in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// It feeds side effects (search index, projections), never the durable
// write path or the real-time relay.
type EventFanout struct {
	log    *slog.Logger
	events chan event.DomainEvent
	sinks  []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent) *EventFanout {
	return &EventFanout{log: log, events: events}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(evt)
		}
	}
}

// Fanout delivers one event to every sink.
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sink.Consume(evt)
	}
}
