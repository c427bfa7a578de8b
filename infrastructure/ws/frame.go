package ws

import (
	"encoding/json"
	"fmt"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
)

// Frame is the JSON envelope used in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type decoder func(payload json.RawMessage) (domain.Command, error)

func decodeAs[T domain.Command]() decoder {
	return func(payload json.RawMessage) (domain.Command, error) {
		var cmd T
		if len(payload) == 0 {
			return cmd, nil
		}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		return cmd, nil
	}
}

var commands = map[string]decoder{
	"join_chat":              decodeAs[domain.JoinChat](),
	"send_message":           decodeAs[domain.SendMessage](),
	"typing_start":           decodeAs[domain.TypingStart](),
	"typing_stop":            decodeAs[domain.TypingStop](),
	"join_sanctuary":         decodeAs[domain.JoinSanctuary](),
	"join_sanctuary_host":    decodeAs[domain.JoinSanctuaryHost](),
	"sanctuary_message":      decodeAs[domain.SanctuaryMessage](),
	"join_audio_room":        decodeAs[domain.JoinAudioRoom](),
	"raise_hand":             decodeAs[domain.RaiseHand](),
	"send_emoji_reaction":    decodeAs[domain.SendEmojiReaction](),
	"emergency_alert":        decodeAs[domain.EmergencyAlert](),
	"promote_to_speaker":     decodeAs[domain.PromoteToSpeaker](),
	"mute_participant":       decodeAs[domain.MuteParticipant](),
	"kick_participant":       decodeAs[domain.KickParticipant](),
	"request_voice_chat":     decodeAs[domain.RequestVoiceChat](),
	"voice_chat_response":    decodeAs[domain.VoiceChatResponse](),
	"message_delivered":      decodeAs[domain.MessageDelivered](),
	"message_read":           decodeAs[domain.MessageRead](),
	"sanctuary_message_read": decodeAs[domain.SanctuaryMessageRead](),
	"ping_sanctuary": func(payload json.RawMessage) (domain.Command, error) {
		return domain.PingSanctuary{Payload: payload}, nil
	},
}

// ParseFrame reads the envelope only.
func ParseFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("%w: invalid frame", errors.ErrInvalidPayload)
	}
	if frame.Type == "" {
		return frame, fmt.Errorf("%w: missing frame type", errors.ErrInvalidPayload)
	}
	return frame, nil
}

// Command decodes the payload into the command named by the frame type.
func (f Frame) Command() (domain.Command, error) {
	decode, ok := commands[f.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, f.Type)
	}
	return decode(f.Payload)
}

// Encode turns an outbound event into a frame.
func Encode(e event.Event) (Frame, error) {
	frame := Frame{Type: string(e.Name), RequestID: e.RequestID}
	if e.Payload == nil {
		return frame, nil
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s: %w", e.Name, err)
	}
	frame.Payload = payload
	return frame, nil
}

// ErrorEvent is the generic error frame. Internal and storage causes are not exposed.
func ErrorEvent(requestID string, err error) event.Event {
	e := event.New(event.Error, ErrorEnvelope{Error: ErrorBody{Code: errors.Code(err), Message: errors.PublicMessage(err)}})
	e.RequestID = requestID
	return e
}
