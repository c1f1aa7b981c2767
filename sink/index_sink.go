package sink

import (
	"log/slog"

	"snappy/domain/event"
	"snappy/repositories"
)

// IndexSink feeds stored messages into the full-text search index.
// Indexing is best effort: a failed write is logged and dropped, the
// durable record in the repository is unaffected.
type IndexSink struct {
	index repositories.ISearchIndex
	log   *slog.Logger
}

func NewIndexSink(index repositories.ISearchIndex, log *slog.Logger) *IndexSink {
	return &IndexSink{index: index, log: log}
}

func (s *IndexSink) Consume(e event.DomainEvent) {
	evt, ok := e.(event.MessageStored)
	if !ok {
		return
	}
	message := repositories.DiskMessage{
		ID:           evt.ID,
		Participants: evt.Participants,
		Author:       evt.Author,
		Content:      evt.Content,
		Lang:         evt.Lang,
		CreatedAt:    evt.At,
		UpdatedAt:    evt.At,
	}
	if err := s.index.IndexMessage(message); err != nil {
		s.log.Error("Message indexing failed", "id", evt.ID, "err", err)
	}
}
