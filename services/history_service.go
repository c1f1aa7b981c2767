package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"snappy/domain"
	"snappy/errors"
	"snappy/repositories"
)

type IHistoryService interface {
	GetHistory(cmd domain.GetHistoryCommand) ([]HistoryEntry, error)
}

// HistoryEntry is one message projected from the viewer's perspective.
type HistoryEntry struct {
	FromSelf  bool      `json:"fromSelf"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryService reconstructs an ordered conversation for a viewer. It is
// the de facto reliability layer: messages dropped on the real-time path
// show up here once persisted.
type HistoryService struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewHistoryService(repository repositories.IMessageRepository, log *slog.Logger) *HistoryService {
	return &HistoryService{repository: repository, log: log}
}

// GetHistory returns the persisted conversation between viewer and peer,
// oldest first, each entry annotated with whether the viewer sent it.
func (s *HistoryService) GetHistory(cmd domain.GetHistoryCommand) ([]HistoryEntry, error) {
	if domain.Blank(cmd.Viewer) {
		return nil, errors.ErrBlankSender
	}
	if domain.Blank(cmd.Peer) {
		return nil, errors.ErrBlankRecipient
	}

	messages, err := s.repository.GetConversation(cmd.Viewer, cmd.Peer)
	if err != nil {
		s.log.Error("History read failed", "err", err)
		return nil, fmt.Errorf("%w: history read failed", errors.ErrStorage)
	}

	viewer := strings.TrimSpace(cmd.Viewer)
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) HistoryEntry {
		return HistoryEntry{
			FromSelf:  item.Author == viewer,
			Message:   item.Content,
			Timestamp: item.UpdatedAt,
		}
	}), nil
}
