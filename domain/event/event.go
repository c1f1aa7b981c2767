package event

import (
	"time"

	"github.com/google/uuid"

	"snappy/domain"
)

type DomainEvent interface {
	Conversation() domain.Pair
}

// MessageStored is emitted after a message has been durably appended.
// Sinks use it to feed the search index and local projections; it is
// never part of the real-time delivery path.
type MessageStored struct {
	ID           uuid.UUID
	Participants domain.Pair
	Author       string
	Content      string
	Lang         string
	At           time.Time
}

func (m MessageStored) Conversation() domain.Pair {
	return m.Participants
}

// DirectMessage is the best-effort real-time forward pushed into a live
// peer's outbound queue. Losing one is not an error; durable history is
// the catch-up path.
type DirectMessage struct {
	From    string
	To      string
	Content string
	Lang    string
	At      time.Time
}

func (m DirectMessage) Conversation() domain.Pair {
	return domain.NewPair(m.From, m.To)
}
