package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/domain/mimetypes"
	"sanctuary/errors"
	"sanctuary/observability"
	"sanctuary/repositories"
	"sanctuary/runtime"

	"github.com/google/uuid"
)

type IChatService interface {
	JoinChat(ctx context.Context, c *runtime.Connection, cmd domain.JoinChat) error
	PostMessage(ctx context.Context, c *runtime.Connection, cmd domain.SendMessage) (domain.ChatMessage, error)
	Typing(ctx context.Context, c *runtime.Connection, sessionID string, typing bool)
	MessageStatus(ctx context.Context, c *runtime.Connection, messageID, sessionID string, status domain.MessageStatus)
	GetMessages(sessionID string, cursor *string) ([]domain.ChatMessage, *string, error)
}

type ChatService struct {
	log        *slog.Logger
	registry   *runtime.Registry
	messages   repositories.IMessageRepository
	monitoring *observability.Monitoring
}

func NewChatService(log *slog.Logger, registry *runtime.Registry,
	messages repositories.IMessageRepository, monitoring *observability.Monitoring) *ChatService {
	return &ChatService{log: log, registry: registry, messages: messages, monitoring: monitoring}
}

// JoinChat puts the connection in a chat room and notifies the others.
func (s *ChatService) JoinChat(ctx context.Context, c *runtime.Connection, cmd domain.JoinChat) error {
	room := domain.NewRoomID(domain.RoomChat, cmd.SessionID)
	if err := joinRoom(ctx, s.registry, c, room); err != nil {
		return err
	}
	s.registry.Broadcast(ctx, room, event.New(event.UserJoined, event.UserPresence{
		SessionID:   cmd.SessionID,
		UserID:      c.ParticipantID(),
		Alias:       c.Alias(),
		UserType:    cmd.UserType,
		IsAnonymous: c.Identity().IsAnonymous(),
		Timestamp:   time.Now().UTC(),
	}), c.ID)
	return nil
}

// PostMessage persists the message then echoes it to the whole room.
// A message that cannot be stored is never broadcast.
func (s *ChatService) PostMessage(ctx context.Context, c *runtime.Connection, cmd domain.SendMessage) (domain.ChatMessage, error) {
	attachment, err := toAttachment(cmd.Attachment)
	if err != nil {
		s.registry.Send(ctx, c.ID, scopedError(event.ChatError, err, cmd.SessionID, ""))
		return domain.ChatMessage{}, err
	}
	kind := cmd.Type
	if kind == "" {
		kind = "text"
	}
	message := domain.ChatMessage{
		ID:         uuid.New(),
		SessionID:  cmd.SessionID,
		SenderID:   c.ParticipantID(),
		Alias:      c.Alias(),
		Content:    cmd.Content,
		Type:       kind,
		Attachment: attachment,
		CreatedAt:  time.Now().UTC(),
	}
	if err = s.messages.StoreMessage(message); err != nil {
		s.monitoring.IncrPersistenceFailures()
		s.registry.Send(ctx, c.ID, scopedError(event.ChatError, err, cmd.SessionID, ""))
		return domain.ChatMessage{}, err
	}

	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomChat, cmd.SessionID),
		event.New(event.NewMessage, event.ChatMessage{
			ID:         message.ID.String(),
			SessionID:  message.SessionID,
			SenderID:   message.SenderID,
			Alias:      message.Alias,
			Content:    message.Content,
			Type:       message.Type,
			Attachment: message.Attachment,
			Timestamp:  message.CreatedAt,
		}), "")
	return message, nil
}

func (s *ChatService) Typing(ctx context.Context, c *runtime.Connection, sessionID string, typing bool) {
	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomChat, sessionID), event.New(event.UserTyping, event.Typing{
		SessionID: sessionID,
		UserID:    c.ParticipantID(),
		Alias:     c.Alias(),
		IsTyping:  typing,
	}), c.ID)
}

func (s *ChatService) MessageStatus(ctx context.Context, c *runtime.Connection, messageID, sessionID string, status domain.MessageStatus) {
	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomChat, sessionID), event.New(event.MsgStatus, event.Status{
		MessageID: messageID,
		SessionID: sessionID,
		Status:    status,
		UserID:    c.ParticipantID(),
		Timestamp: time.Now().UTC(),
	}), c.ID)
}

func (s *ChatService) GetMessages(sessionID string, cursor *string) ([]domain.ChatMessage, *string, error) {
	return s.messages.GetMessages(sessionID, cursor)
}

// toAttachment sniffs inline data. Attachments given by URL only are kept as references.
func toAttachment(payload *domain.AttachmentPayload) (*domain.Attachment, error) {
	if payload == nil {
		return nil, nil
	}
	attachment := &domain.Attachment{Name: payload.Name, URL: payload.URL}
	if payload.Data == "" {
		return attachment, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: attachment data is not base64", errors.ErrInvalidPayload)
	}
	detected, ok := mimetypes.IsAllowedAttachment(data)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedAttachment, detected)
	}
	attachment.MimeType = string(detected)
	attachment.Size = len(data)
	return attachment, nil
}
