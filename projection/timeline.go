// Package projection builds local timelines from observed events.
// Handles ordering and bounded retention.
// Does not emit events or serve as the durable history source.
package projection

import (
	"sync"

	"snappy/domain"
	"snappy/domain/event"
)

// Timeline keeps the most recent messages of each conversation in memory.
// It is a read model fed by the event fanout; the repository remains the
// source of truth.
type Timeline struct {
	mu    sync.RWMutex
	size  int
	tails map[string][]domain.Message
}

func NewTimeline(size int) *Timeline {
	return &Timeline{
		size:  size,
		tails: make(map[string][]domain.Message),
	}
}

func (t *Timeline) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.MessageStored:
		t.append(fromEvent(evt))
	}
}

func (t *Timeline) append(message domain.Message) {
	key := message.Participants.String()

	t.mu.Lock()
	defer t.mu.Unlock()
	tail := append(t.tails[key], message)
	if len(tail) > t.size {
		tail = tail[len(tail)-t.size:]
	}
	t.tails[key] = tail
}

// Tail returns a copy of the retained messages between the two users,
// oldest first.
func (t *Timeline) Tail(a, b string) []domain.Message {
	key := domain.NewPair(a, b).String()

	t.mu.RLock()
	defer t.mu.RUnlock()
	tail := t.tails[key]
	out := make([]domain.Message, len(tail))
	copy(out, tail)
	return out
}

func fromEvent(evt event.MessageStored) domain.Message {
	return domain.Message{
		ID:           evt.ID,
		Participants: evt.Participants,
		SenderID:     evt.Author,
		Content:      evt.Content,
		Lang:         evt.Lang,
		CreatedAt:    evt.At,
		UpdatedAt:    evt.At,
	}
}
