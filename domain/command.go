package domain

import "encoding/json"

// Command is the closed set of inbound requests a connection can issue.
// Dispatch over it is a single exhaustive type switch.
type Command interface {
	command()
}

type JoinChat struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	UserType  string `json:"userType" validate:"omitempty,max=32"`
}

type SendMessage struct {
	SessionID  string             `json:"sessionId" validate:"required,max=128"`
	Content    string             `json:"content" validate:"required_without=Attachment,max=4000"`
	Type       string             `json:"type" validate:"omitempty,oneof=text image file voice"`
	Attachment *AttachmentPayload `json:"attachment,omitempty" validate:"omitempty"`
}

// AttachmentPayload is the inbound attachment form. Data is base64 encoded.
type AttachmentPayload struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
	Data string `json:"data,omitempty" validate:"omitempty,base64"`
}

type TypingStart struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

type TypingStop struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

type ParticipantInfo struct {
	Alias       string `json:"alias" validate:"omitempty,max=64"`
	IsAnonymous bool   `json:"isAnonymous"`
	IsHost      bool   `json:"isHost"`
	IsModerator bool   `json:"isModerator"`
}

type JoinSanctuary struct {
	SanctuaryID string          `json:"sanctuaryId" validate:"required,max=128"`
	Participant ParticipantInfo `json:"participant"`
}

type JoinSanctuaryHost struct {
	SanctuaryID string `json:"sanctuaryId" validate:"required,max=128"`
	HostToken   string `json:"hostToken,omitempty" validate:"omitempty,max=256"`
}

type SanctuaryMessage struct {
	SanctuaryID      string `json:"sanctuaryId" validate:"required,max=128"`
	Content          string `json:"content" validate:"required,max=4000"`
	Type             string `json:"type" validate:"omitempty,oneof=text voice image"`
	ParticipantAlias string `json:"participantAlias,omitempty" validate:"omitempty,max=64"`
}

type JoinAudioRoom struct {
	SessionID   string          `json:"sessionId" validate:"required,max=128"`
	Participant ParticipantInfo `json:"participant"`
}

type RaiseHand struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	Raised    *bool  `json:"raised,omitempty"`
}

type SendEmojiReaction struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	Emoji     string `json:"emoji" validate:"required,max=16"`
}

type EmergencyAlert struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	AlertType string `json:"alertType" validate:"omitempty,max=64"`
	Message   string `json:"message" validate:"omitempty,max=1000"`
}

type PromoteToSpeaker struct {
	SessionID     string `json:"sessionId" validate:"required,max=128"`
	ParticipantID string `json:"participantId" validate:"required,max=128"`
}

type MuteParticipant struct {
	SessionID     string `json:"sessionId" validate:"required,max=128"`
	ParticipantID string `json:"participantId" validate:"required,max=128"`
}

type KickParticipant struct {
	SessionID     string `json:"sessionId" validate:"required,max=128"`
	ParticipantID string `json:"participantId" validate:"required,max=128"`
}

type RequestVoiceChat struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=128"`
	SessionID    string `json:"sessionId" validate:"omitempty,max=128"`
}

type VoiceChatResponse struct {
	TargetUserID string `json:"targetUserId" validate:"required,max=128"`
	SessionID    string `json:"sessionId" validate:"omitempty,max=128"`
	Accepted     bool   `json:"accepted"`
}

// PingSanctuary carries an arbitrary payload echoed back with the server time.
type PingSanctuary struct {
	Payload json.RawMessage `json:"-"`
}

type MessageDelivered struct {
	MessageID string `json:"messageId" validate:"required,max=128"`
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

type MessageRead struct {
	MessageID string `json:"messageId" validate:"required,max=128"`
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

type SanctuaryMessageRead struct {
	MessageID   string `json:"messageId" validate:"required,max=128"`
	SanctuaryID string `json:"sanctuaryId" validate:"required,max=128"`
}

func (JoinChat) command()             {}
func (SendMessage) command()          {}
func (TypingStart) command()          {}
func (TypingStop) command()           {}
func (JoinSanctuary) command()        {}
func (JoinSanctuaryHost) command()    {}
func (SanctuaryMessage) command()     {}
func (JoinAudioRoom) command()        {}
func (RaiseHand) command()            {}
func (SendEmojiReaction) command()    {}
func (EmergencyAlert) command()       {}
func (PromoteToSpeaker) command()     {}
func (MuteParticipant) command()      {}
func (KickParticipant) command()      {}
func (RequestVoiceChat) command()     {}
func (VoiceChatResponse) command()    {}
func (PingSanctuary) command()        {}
func (MessageDelivered) command()     {}
func (MessageRead) command()          {}
func (SanctuaryMessageRead) command() {}
