package event

import (
	"time"

	"sanctuary/domain"
)

// Name is an outbound event type as seen on the wire.
type Name string

const (
	UserJoined Name = "user_joined"
	UserLeft   Name = "user_left"
	NewMessage Name = "new_message"
	UserTyping Name = "user_typing"
	ChatError  Name = "chat_error"
	MsgStatus  Name = "message_status"

	SanctuaryParticipantJoined Name = "sanctuary_participant_joined"
	SanctuaryParticipantLeft   Name = "sanctuary_participant_left"
	SanctuaryHostJoined        Name = "sanctuary_host_joined"
	SanctuaryHostAuthFailed    Name = "sanctuary_host_auth_failed"
	SanctuaryHostLeft          Name = "sanctuary_host_left"
	SanctuaryNewMessage        Name = "sanctuary_new_message"
	SanctuaryNewSubmission     Name = "sanctuary_new_submission"
	SanctuaryError             Name = "sanctuary_error"
	SanctuaryMessageRead       Name = "sanctuary_message_read"
	PongSanctuary              Name = "pong_sanctuary"

	AudioRoomJoined        Name = "audio_room_joined"
	AudioParticipantJoined Name = "audio_participant_joined"
	AudioParticipantLeft   Name = "audio_participant_left"
	HandRaised             Name = "hand_raised"
	EmojiReaction          Name = "emoji_reaction"
	Emergency              Name = "emergency_alert"
	PromotedToSpeaker      Name = "promoted_to_speaker"
	ParticipantPromoted    Name = "participant_promoted"
	MutedByHost            Name = "muted_by_host"
	ParticipantMuted       Name = "participant_muted"
	KickedFromRoom         Name = "kicked_from_room"
	ParticipantKicked      Name = "participant_kicked"
	VoiceChatRequest       Name = "voice_chat_request"
	VoiceChatResponse      Name = "voice_chat_response"

	Error Name = "error"
)

// Event is one outbound frame. Payload is marshalled as is.
type Event struct {
	Name      Name
	RequestID string
	Payload   any
}

func New(name Name, payload any) Event {
	return Event{Name: name, Payload: payload}
}

// LeftEventFor returns the leave notification used for a room kind.
func LeftEventFor(kind domain.RoomKind) Name {
	switch kind {
	case domain.RoomChat:
		return UserLeft
	case domain.RoomSanctuary:
		return SanctuaryParticipantLeft
	case domain.RoomSanctuaryHost:
		return SanctuaryHostLeft
	default:
		return AudioParticipantLeft
	}
}

type UserPresence struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	Alias       string    `json:"alias"`
	UserType    string    `json:"userType,omitempty"`
	IsAnonymous bool      `json:"isAnonymous"`
	Timestamp   time.Time `json:"timestamp"`
}

type ChatMessage struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"sessionId"`
	SenderID   string             `json:"senderId"`
	Alias      string             `json:"alias"`
	Content    string             `json:"content"`
	Type       string             `json:"type"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

type Typing struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Alias     string `json:"alias"`
	IsTyping  bool   `json:"isTyping"`
}

type Status struct {
	MessageID string               `json:"messageId"`
	SessionID string               `json:"sessionId,omitempty"`
	Status    domain.MessageStatus `json:"status"`
	UserID    string               `json:"userId"`
	Timestamp time.Time            `json:"timestamp"`
}

type ScopedError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	SessionID   string `json:"sessionId,omitempty"`
	SanctuaryID string `json:"sanctuaryId,omitempty"`
}

type SanctuaryParticipant struct {
	SanctuaryID   string    `json:"sanctuaryId"`
	ParticipantID string    `json:"participantId"`
	Alias         string    `json:"alias"`
	IsAnonymous   bool      `json:"isAnonymous"`
	Timestamp     time.Time `json:"timestamp"`
}

// HostSnapshot is handed to a host on a successful host join.
type HostSnapshot struct {
	SanctuaryID      string    `json:"sanctuaryId"`
	HostToken        string    `json:"hostToken"`
	SubmissionsCount int       `json:"submissionsCount"`
	LastActivity     time.Time `json:"lastActivity"`
	Topic            string    `json:"topic"`
	Description      string    `json:"description,omitempty"`
	Emoji            string    `json:"emoji,omitempty"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

type HostAuthFailed struct {
	Reason      string `json:"reason"`
	SanctuaryID string `json:"sanctuaryId"`
}

type HostLeft struct {
	SanctuaryID string    `json:"sanctuaryId"`
	HostID      string    `json:"hostId"`
	Timestamp   time.Time `json:"timestamp"`
}

type Submission struct {
	SanctuaryID string            `json:"sanctuaryId"`
	Submission  domain.Submission `json:"submission"`
}

type NewSubmission struct {
	SanctuaryID      string            `json:"sanctuaryId"`
	Submission       domain.Submission `json:"submission"`
	SubmissionsCount int               `json:"submissionsCount"`
}

type Pong struct {
	Payload    any       `json:"payload,omitempty"`
	ServerTime time.Time `json:"serverTime"`
}

type AudioRoom struct {
	SessionID    string               `json:"sessionId"`
	Participants []domain.Participant `json:"participants"`
}

type AudioParticipant struct {
	SessionID   string             `json:"sessionId"`
	Participant domain.Participant `json:"participant"`
}

type AudioLeft struct {
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	Timestamp     time.Time `json:"timestamp"`
}

type Hand struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	Alias         string `json:"alias"`
	Raised        bool   `json:"raised"`
}

type Reaction struct {
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	Alias         string    `json:"alias"`
	Emoji         string    `json:"emoji"`
	Timestamp     time.Time `json:"timestamp"`
}

type Alert struct {
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	Alias         string    `json:"alias"`
	AlertType     string    `json:"alertType,omitempty"`
	Message       string    `json:"message,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Moderation describes an action applied to a participant by an actor.
type Moderation struct {
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	ActorID       string    `json:"actorId"`
	ActorAlias    string    `json:"actorAlias"`
	Timestamp     time.Time `json:"timestamp"`
}

type VoiceChat struct {
	FromUserID string    `json:"fromUserId"`
	FromAlias  string    `json:"fromAlias"`
	SessionID  string    `json:"sessionId,omitempty"`
	Accepted   *bool     `json:"accepted,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
