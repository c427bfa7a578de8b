package services

import (
	"context"
	"fmt"
	"log/slog"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/errors"
	"sanctuary/runtime"
)

// Dispatcher routes validated inbound commands to the owning service.
type Dispatcher struct {
	log        *slog.Logger
	chat       *ChatService
	sanctuary  *SanctuaryService
	audio      *AudioService
	moderation *ModerationRouter
}

func NewDispatcher(log *slog.Logger, chat *ChatService, sanctuary *SanctuaryService,
	audio *AudioService, moderation *ModerationRouter) *Dispatcher {
	return &Dispatcher{log: log, chat: chat, sanctuary: sanctuary, audio: audio, moderation: moderation}
}

// Handle validates and runs a command for a connection.
//
// Errors of operations that already answered the requester with a scoped
// event are not returned. A returned error is a malformed or unknown request.
func (d *Dispatcher) Handle(ctx context.Context, c *runtime.Connection, cmd domain.Command) error {
	if err := auth.ValidateCommand(cmd); err != nil {
		return err
	}

	switch cmd := cmd.(type) {
	case domain.JoinChat:
		return d.chat.JoinChat(ctx, c, cmd)
	case domain.SendMessage:
		_, _ = d.chat.PostMessage(ctx, c, cmd)
	case domain.TypingStart:
		d.chat.Typing(ctx, c, cmd.SessionID, true)
	case domain.TypingStop:
		d.chat.Typing(ctx, c, cmd.SessionID, false)
	case domain.MessageDelivered:
		d.chat.MessageStatus(ctx, c, cmd.MessageID, cmd.SessionID, domain.StatusDelivered)
	case domain.MessageRead:
		d.chat.MessageStatus(ctx, c, cmd.MessageID, cmd.SessionID, domain.StatusRead)

	case domain.JoinSanctuary:
		_ = d.sanctuary.JoinSanctuary(ctx, c, cmd)
	case domain.JoinSanctuaryHost:
		_ = d.sanctuary.JoinHost(ctx, c, cmd)
	case domain.SanctuaryMessage:
		_ = d.sanctuary.Submit(ctx, c, cmd)
	case domain.SanctuaryMessageRead:
		d.sanctuary.MessageRead(ctx, c, cmd)
	case domain.PingSanctuary:
		d.sanctuary.Ping(ctx, c, cmd.Payload)

	case domain.JoinAudioRoom:
		return d.audio.JoinAudio(ctx, c, cmd)
	case domain.RaiseHand:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionRaiseHand, SessionID: cmd.SessionID, Raised: cmd.Raised})
	case domain.SendEmojiReaction:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionEmojiReaction, SessionID: cmd.SessionID, Emoji: cmd.Emoji})
	case domain.EmergencyAlert:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionEmergencyAlert, SessionID: cmd.SessionID,
			AlertType: cmd.AlertType, Message: cmd.Message})
	case domain.PromoteToSpeaker:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionPromote, SessionID: cmd.SessionID, TargetID: cmd.ParticipantID})
	case domain.MuteParticipant:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionMute, SessionID: cmd.SessionID, TargetID: cmd.ParticipantID})
	case domain.KickParticipant:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionKick, SessionID: cmd.SessionID, TargetID: cmd.ParticipantID})
	case domain.RequestVoiceChat:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionVoiceRequest, SessionID: cmd.SessionID, TargetID: cmd.TargetUserID})
	case domain.VoiceChatResponse:
		d.moderation.Dispatch(ctx, c, ModerationAction{Action: ActionVoiceResponse, SessionID: cmd.SessionID,
			TargetID: cmd.TargetUserID, Accepted: cmd.Accepted})

	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownCommand, cmd)
	}
	return nil
}
