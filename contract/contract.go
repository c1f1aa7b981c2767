package contract

import (
	"context"
	"reflect"

	"snappy/domain/event"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// EventSink consumes domain events for one live connection or one
// projection. Consume must never block: a slow consumer drops events
// instead of stalling the producer.
type EventSink interface {
	Consume(e event.DomainEvent)
}

// IPresence tracks which user is currently reachable through which
// connection sink. Implementations must be safe for concurrent use and
// must never block a caller beyond internal synchronization.
type IPresence interface {
	Register(userID string, sink EventSink)
	Lookup(userID string) (EventSink, bool)
	Unregister(sink EventSink)
}
