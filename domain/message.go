// Package domain contains core concepts of the sanctuary system.
// This file defines chat messages exchanged in chat rooms.
// Messages are immutable once persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents an immutable chat event.
type ChatMessage struct {
	ID         uuid.UUID // unique identifier
	SessionID  string
	SenderID   string
	Alias      string
	Content    string
	Type       string
	Attachment *Attachment
	CreatedAt  time.Time
}

// Attachment is a file reference carried by a chat message.
type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type MessageStatus string

const (
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)
