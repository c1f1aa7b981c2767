// Package runtime handles connection presence and per-connection message
// relay. It coordinates live delivery without containing business logic,
// domain rules, or any transport detail.
package runtime

import (
	"sync"

	"snappy/contract"
)

// Presence is the process-wide mapping from user id to the active
// connection sink. A reverse index keyed by sink makes disconnect cleanup
// O(1) instead of a scan over all sessions, and guarantees that
// unregistering a superseded handle never evicts a newer registration.
//
// Presence is never persisted; it is rebuilt empty on process restart.
// Sinks must be comparable values (pointers in practice) since they key
// the reverse map.
type Presence struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
	owners   map[contract.EventSink]string
}

func NewPresence() *Presence {
	return &Presence{
		sessions: make(map[string]contract.EventSink),
		owners:   make(map[contract.EventSink]string),
	}
}

// Register binds a user id to its live connection sink. Last write wins:
// a previous sink for the same user is silently superseded, so a late
// disconnect of the old connection becomes a no-op. A sink re-registering
// under a new id releases its previous id first, so one connection never
// holds more than one presence entry.
func (p *Presence) Register(userID string, sink contract.EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.sessions[userID]; ok && old != sink {
		delete(p.owners, old)
	}
	if previousID, ok := p.owners[sink]; ok && previousID != userID {
		if current, ok := p.sessions[previousID]; ok && current == sink {
			delete(p.sessions, previousID)
		}
	}
	p.sessions[userID] = sink
	p.owners[sink] = userID
}

// Lookup returns the sink currently bound to the user id, if any.
func (p *Presence) Lookup(userID string) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sink, ok := p.sessions[userID]
	return sink, ok
}

// Unregister removes the entry owned by the given sink. The trigger is
// "this connection closed", not "this user logged out": when the user has
// already re-registered through a newer connection, nothing is removed.
func (p *Presence) Unregister(sink contract.EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.owners[sink]
	if !ok {
		return
	}
	delete(p.owners, sink)
	if current, ok := p.sessions[userID]; ok && current == sink {
		delete(p.sessions, userID)
	}
}

// Online returns the ids of all currently connected users, in no
// particular order. Used by the debug inspector only.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.sessions))
	for id := range p.sessions {
		ids = append(ids, id)
	}
	return ids
}
