package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"snappy/domain"
	"snappy/domain/event"
	"snappy/errors"
	"snappy/moderation"
	"snappy/repositories"
)

type IMessageService interface {
	Append(cmd domain.PostMessageCommand) (domain.Message, error)
}

// MessageService owns the durable append path. It validates before any
// store access, censors the text, persists, and then emits a MessageStored
// event for the fanout pipeline. Emission is non-blocking: a full event
// channel loses the index/projection update, never the durable write.
type MessageService struct {
	repository repositories.IMessageRepository
	moderator  moderation.Moderator
	events     chan<- event.DomainEvent
	log        *slog.Logger
}

func NewMessageService(repository repositories.IMessageRepository,
	moderator moderation.Moderator, events chan<- event.DomainEvent,
	log *slog.Logger) *MessageService {
	return &MessageService{
		repository: repository,
		moderator:  moderator,
		events:     events,
		log:        log,
	}
}

// Append durably stores a message between cmd.From and cmd.To. Validation
// failures surface before anything is written; backing store faults come
// back wrapped as a storage failure without leaking the cause into the
// validation class.
func (s *MessageService) Append(cmd domain.PostMessageCommand) (domain.Message, error) {
	if domain.Blank(cmd.From) {
		return domain.Message{}, errors.ErrBlankSender
	}
	if domain.Blank(cmd.To) {
		return domain.Message{}, errors.ErrBlankRecipient
	}
	if domain.Blank(cmd.Content) {
		return domain.Message{}, errors.ErrBlankContent
	}

	at := cmd.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	content, censored := s.moderator.Censor(strings.TrimSpace(cmd.Content))
	if len(censored) > 0 {
		s.log.Debug("Censored message content", "words", len(censored))
	}
	info := whatlanggo.Detect(content)

	message := domain.Message{
		ID:           uuid.New(),
		Participants: domain.NewPair(cmd.From, cmd.To),
		SenderID:     strings.TrimSpace(cmd.From),
		Content:      content,
		Lang:         info.Lang.Iso6391(),
		CreatedAt:    at,
		UpdatedAt:    at,
	}

	if err := s.repository.StoreMessage(toDiskMessage(message)); err != nil {
		if stderrors.Is(err, errors.ErrValidation) {
			return domain.Message{}, err
		}
		s.log.Error("Message write failed", "err", err)
		return domain.Message{}, fmt.Errorf("%w: message write failed", errors.ErrStorage)
	}

	s.dispatch(event.MessageStored{
		ID:           message.ID,
		Participants: message.Participants,
		Author:       message.SenderID,
		Content:      message.Content,
		Lang:         message.Lang,
		At:           message.UpdatedAt,
	})

	return message, nil
}

// dispatch hands the event to the fanout pipeline without ever blocking
// the append caller.
func (s *MessageService) dispatch(e event.DomainEvent) {
	select {
	case s.events <- e:
	default:
		s.log.Warn(fmt.Sprintf("Event channel full, dropping event for %s", e.Conversation()))
	}
}

func toDiskMessage(message domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:           message.ID,
		Participants: message.Participants,
		Author:       message.SenderID,
		Content:      message.Content,
		Lang:         message.Lang,
		CreatedAt:    message.CreatedAt,
		UpdatedAt:    message.UpdatedAt,
	}
}
