package domain

import (
	"time"
)

type Command interface {
	Conversation() Pair
}

type PostMessageCommand struct {
	From      string
	To        string
	Content   string
	CreatedAt time.Time
}

func (c PostMessageCommand) Conversation() Pair {
	return NewPair(c.From, c.To)
}

type GetHistoryCommand struct {
	Viewer string
	Peer   string
}

func (c GetHistoryCommand) Conversation() Pair {
	return NewPair(c.Viewer, c.Peer)
}
