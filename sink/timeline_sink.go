package sink

import (
	"snappy/domain/event"
	"snappy/projection"
)

// TimelineSink forwards stored messages to the in-memory timeline
// projection.
type TimelineSink struct {
	timeline *projection.Timeline
}

func NewTimelineSink(timeline *projection.Timeline) *TimelineSink {
	return &TimelineSink{timeline: timeline}
}

func (s *TimelineSink) Consume(e event.DomainEvent) {
	s.timeline.Consume(e)
}
