package services

import (
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"snappy/domain"
	"snappy/domain/event"
	"snappy/errors"
	"snappy/repositories"
)

func storedMessage(from, to, content string, at time.Time) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:           uuid.New(),
		Participants: domain.NewPair(from, to),
		Author:       from,
		Content:      content,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestHistoryService_FromSelfAnnotation(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()
	repo := &stubMessageRepository{stored: []repositories.DiskMessage{
		storedMessage("alice", "bob", "hi bob", base),
		storedMessage("bob", "alice", "hi alice", base.Add(time.Second)),
	}}
	service := NewHistoryService(repo, slog.Default())

	// When alice reads the conversation
	entries, err := service.GetHistory(domain.GetHistoryCommand{Viewer: "alice", Peer: "bob"})
	req.NoError(err)
	req.Len(entries, 2)

	// Then her own message is flagged, bob's is not
	req.True(entries[0].FromSelf)
	req.Equal("hi bob", entries[0].Message)
	req.False(entries[1].FromSelf)
	req.Equal("hi alice", entries[1].Message)

	// And the same history viewed by bob flips the flags
	entries, err = service.GetHistory(domain.GetHistoryCommand{Viewer: "bob", Peer: "alice"})
	req.NoError(err)
	req.False(entries[0].FromSelf)
	req.True(entries[1].FromSelf)
}

func TestHistoryService_EmptyConversation(t *testing.T) {
	req := require.New(t)
	service := NewHistoryService(&stubMessageRepository{}, slog.Default())

	entries, err := service.GetHistory(domain.GetHistoryCommand{Viewer: "alice", Peer: "ghost"})
	req.NoError(err)
	req.Empty(entries)
}

func TestHistoryService_ValidatesIdentifiers(t *testing.T) {
	req := require.New(t)
	service := NewHistoryService(&stubMessageRepository{}, slog.Default())

	_, err := service.GetHistory(domain.GetHistoryCommand{Viewer: "  ", Peer: "bob"})
	req.ErrorIs(err, errors.ErrBlankSender)

	_, err = service.GetHistory(domain.GetHistoryCommand{Viewer: "alice", Peer: ""})
	req.ErrorIs(err, errors.ErrBlankRecipient)
}

func TestHistoryService_WrapsStorageFaults(t *testing.T) {
	req := require.New(t)
	repo := &stubMessageRepository{failure: stderrors.New("iterator exploded")}
	service := NewHistoryService(repo, slog.Default())

	_, err := service.GetHistory(domain.GetHistoryCommand{Viewer: "alice", Peer: "bob"})
	req.ErrorIs(err, errors.ErrStorage)
	req.NotContains(err.Error(), "iterator exploded")
}

func TestHistoryService_AppendThenReadRoundTrip(t *testing.T) {
	req := require.New(t)
	repo := &stubMessageRepository{}
	messageService := newTestMessageService(t, repo, make(chan event.DomainEvent, 4))
	historyService := NewHistoryService(repo, slog.Default())

	_, err := messageService.Append(domain.PostMessageCommand{
		From: "alice", To: "bob", Content: "first",
	})
	req.NoError(err)
	_, err = messageService.Append(domain.PostMessageCommand{
		From: "bob", To: "alice", Content: "second",
	})
	req.NoError(err)

	entries, err := historyService.GetHistory(domain.GetHistoryCommand{Viewer: "bob", Peer: "alice"})
	req.NoError(err)
	req.Len(entries, 2)
	req.False(entries[0].FromSelf)
	req.True(entries[1].FromSelf)
}
