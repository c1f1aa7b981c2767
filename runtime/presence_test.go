package runtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"snappy/domain/event"
)

// stubSink is a comparable sink recording what it consumed.
type stubSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *stubSink) Consume(e event.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestPresence_RegisterAndLookup(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &stubSink{}

	// Given no registration, lookup misses
	_, ok := presence.Lookup("alice")
	req.False(ok)

	// When alice registers
	presence.Register("alice", sink)

	// Then her sink is reachable
	found, ok := presence.Lookup("alice")
	req.True(ok)
	req.Same(sink, found)
}

func TestPresence_RegisterIsIdempotent(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &stubSink{}

	presence.Register("alice", sink)
	presence.Register("alice", sink)

	found, ok := presence.Lookup("alice")
	req.True(ok)
	req.Same(sink, found)
	req.Len(presence.Online(), 1)
}

func TestPresence_LastWriteWins(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	oldSink := &stubSink{}
	newSink := &stubSink{}

	// Given alice connected through an old connection
	presence.Register("alice", oldSink)

	// When a second connection claims the same identity
	presence.Register("alice", newSink)

	// Then the new sink serves lookups
	found, ok := presence.Lookup("alice")
	req.True(ok)
	req.Same(newSink, found)
}

func TestPresence_StaleUnregisterIsNoOp(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	oldSink := &stubSink{}
	newSink := &stubSink{}

	// Given alice reconnected, superseding her old sink
	presence.Register("alice", oldSink)
	presence.Register("alice", newSink)

	// When the old connection finally closes
	presence.Unregister(oldSink)

	// Then the newer registration survives
	found, ok := presence.Lookup("alice")
	req.True(ok)
	req.Same(newSink, found)
}

func TestPresence_RebindReleasesPreviousIdentity(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &stubSink{}

	// Given a connection registered under one id, then rebinding to another
	presence.Register("alice", sink)
	presence.Register("alice2", sink)

	// Then the first id no longer resolves
	_, ok := presence.Lookup("alice")
	req.False(ok)
	found, ok := presence.Lookup("alice2")
	req.True(ok)
	req.Same(sink, found)
	req.Len(presence.Online(), 1)

	// And unregistering the connection leaves nothing behind
	presence.Unregister(sink)
	_, ok = presence.Lookup("alice2")
	req.False(ok)
	req.Empty(presence.Online())
}

func TestPresence_RebindDoesNotEvictOtherOwner(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	aliceSink := &stubSink{}
	bobSink := &stubSink{}

	// Given bob's id taken over by alice's connection
	presence.Register("alice", aliceSink)
	presence.Register("bob", bobSink)
	presence.Register("bob", aliceSink)

	// Then alice's old id is released and bob resolves to her sink
	_, ok := presence.Lookup("alice")
	req.False(ok)
	found, ok := presence.Lookup("bob")
	req.True(ok)
	req.Same(aliceSink, found)

	// And the superseded connection closing is a no-op
	presence.Unregister(bobSink)
	_, ok = presence.Lookup("bob")
	req.True(ok)
}

func TestPresence_UnregisterRemovesEntry(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &stubSink{}

	presence.Register("alice", sink)
	presence.Unregister(sink)

	_, ok := presence.Lookup("alice")
	req.False(ok)
	req.Empty(presence.Online())

	// Unregistering twice must not panic or remove anything else
	presence.Unregister(sink)
}

func TestPresence_ConcurrentChurn(t *testing.T) {
	presence := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n%10)
			sink := &stubSink{}
			presence.Register(userID, sink)
			presence.Lookup(userID)
			presence.Unregister(sink)
		}(i)
	}
	wg.Wait()

	// No assertion beyond absence of races and a consistent map
	require.LessOrEqual(t, len(presence.Online()), 10)
}
