//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(message domain.ChatMessage) error
	GetMessages(sessionID string, cursor *string) ([]domain.ChatMessage, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"session_id"`
	SenderID   string             `json:"sender_id"`
	Alias      string             `json:"alias"`
	Content    string             `json:"content"`
	Type       string             `json:"type"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
	At         int64              `json:"at"`
}

// messagePrefix length-prefixes the session id: ids are client chosen and may
// contain ':', so "a" must not be a key prefix of "a:1".
func messagePrefix(sessionID string) string {
	return fmt.Sprintf("msg:%d:%s:", len(sessionID), sessionID)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{len}:{session_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.ChatMessage) error {
	key := fmt.Sprintf("%s%019d:%s",
		messagePrefix(message.SessionID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromChatMessage(message))
	if err != nil {
		return errors.Wrap(errors.ErrInvalidPayload, err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		m.log.Error("Chat message store failure", "operation", "store_message",
			"session_id", message.SessionID, "error", err)
		return errors.Wrap(errors.ErrPersistence, err)
	}
	return nil
}

// GetMessages retrieves a page of messages for a session, newest first.
// The returned cursor is the key suffix of the last message of the page and
// resumes the scan right after it.
func (m MessageRepository) GetMessages(sessionID string, cursor *string) ([]domain.ChatMessage, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := messagePrefix(sessionID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Start past the newest possible key, then walk back in time
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[prefixLen:]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrPersistence, err)
	}

	messages := make([]domain.ChatMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, nil, errors.Wrap(errors.ErrPersistence, err)
		}
		message, err := toChatMessage(dm)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrPersistence, err)
		}
		messages = append(messages, message)
	}
	if len(messages) == 0 {
		return messages, nil, nil
	}
	return messages, lo.ToPtr(lastKey), nil
}

func fromChatMessage(message domain.ChatMessage) diskMessage {
	return diskMessage{
		ID:         message.ID.String(),
		SessionID:  message.SessionID,
		SenderID:   message.SenderID,
		Alias:      message.Alias,
		Content:    message.Content,
		Type:       message.Type,
		Attachment: message.Attachment,
		At:         message.CreatedAt.UnixNano(),
	}
}

func toChatMessage(dm diskMessage) (domain.ChatMessage, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{
		ID:         parsedID,
		SessionID:  dm.SessionID,
		SenderID:   dm.SenderID,
		Alias:      dm.Alias,
		Content:    dm.Content,
		Type:       dm.Type,
		Attachment: dm.Attachment,
		CreatedAt:  time.Unix(0, dm.At).UTC(),
	}, nil
}
