// Package domain contains core concepts of the chat system.
// This file defines Message records and the conversation pair invariant.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event between two participants.
// UpdatedAt equals CreatedAt in practice since messages are never edited;
// both are kept because conversations are ordered by UpdatedAt.
type Message struct {
	ID           uuid.UUID
	Participants Pair
	SenderID     string
	Content      string
	Lang         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Pair is the unordered couple of participant identifiers owning a
// conversation. The stored ordering is canonical: A is always the smaller
// identifier, so NewPair("bob", "alice") == NewPair("alice", "bob").
type Pair struct {
	A string
	B string
}

func NewPair(x, y string) Pair {
	x, y = strings.TrimSpace(x), strings.TrimSpace(y)
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Contains reports whether id is one of the two participants.
func (p Pair) Contains(id string) bool {
	return p.A == id || p.B == id
}

// String renders the canonical "a:b" form used in storage keys and the
// search index.
func (p Pair) String() string {
	return p.A + ":" + p.B
}

// Blank reports whether an identifier or text field is empty once trimmed.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
