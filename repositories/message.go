package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"snappy/domain"
	"snappy/errors"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetConversation(a, b string) ([]DiskMessage, error)
}

// DiskMessage is the repository-level representation of a persisted
// message, mirrored one-to-one by its JSON record on disk.
type DiskMessage struct {
	ID           uuid.UUID   `json:"id"`
	Participants domain.Pair `json:"participants"`
	Author       string      `json:"author"`
	Content      string      `json:"content"`
	Lang         string      `json:"lang,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// conversationPrefix is shared by writes and scans so both sides of a pair
// always resolve to the same key space.
func conversationPrefix(pair domain.Pair) string {
	return fmt.Sprintf("msg:%s:", pair)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{a}:{b}:{timestamp_padded}:{uuid}" to:
//  1. Group both directions of a conversation under one canonical prefix.
//  2. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  3. Prevent data loss by using the UUID as a collision disconnector if
//     two messages land on the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	if !message.Participants.Contains(message.Author) {
		return errors.ErrSenderNotInPair
	}
	if domain.Blank(message.Content) {
		return errors.ErrBlankContent
	}

	key := fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.Participants),
		message.UpdatedAt.UnixNano(),
		message.ID,
	)

	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetConversation retrieves every message of the {a,b} pair using a prefix
// scan. Thanks to the padded timestamp in the key, messages come back
// naturally sorted oldest first, and {a,b} and {b,a} return the same
// sequence. An unknown pair yields an empty slice, not an error.
func (m MessageRepository) GetConversation(a, b string) ([]DiskMessage, error) {
	pair := domain.NewPair(a, b)
	prefix := []byte(conversationPrefix(pair))

	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				buf := make([]byte, len(value))
				copy(buf, value)
				byteMessages = append(byteMessages, buf)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]DiskMessage, 0, len(byteMessages))
	for _, raw := range byteMessages {
		var message DiskMessage
		if err := json.Unmarshal(raw, &message); err != nil {
			return nil, fmt.Errorf("corrupt message record: %w", err)
		}
		// Ids are opaque and may contain the key separator, so a foreign
		// pair can alias this prefix. The stored pair is authoritative.
		if message.Participants != pair {
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}
