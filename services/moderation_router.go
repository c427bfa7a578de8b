package services

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/observability"
	"sanctuary/runtime"

	"github.com/samber/lo"
)

type Action string

const (
	ActionMute           Action = "mute"
	ActionPromote        Action = "promote"
	ActionKick           Action = "kick"
	ActionEmergencyAlert Action = "emergency_alert"
	ActionRaiseHand      Action = "raise_hand"
	ActionEmojiReaction  Action = "emoji_reaction"
	ActionVoiceRequest   Action = "voice_chat_request"
	ActionVoiceResponse  Action = "voice_chat_response"
)

// ModerationAction is one signal issued by an actor in an audio room.
type ModerationAction struct {
	Action    Action
	SessionID string
	TargetID  string
	Emoji     string
	Raised    *bool
	AlertType string
	Message   string
	Accepted  bool
}

// ModerationRouter delivers moderation signals.
//
// Directed audio actions resolve the target through the participant index,
// keeping only its connections inside the audio room. An unresolved target is
// a silent no-op. Nothing is persisted here.
type ModerationRouter struct {
	log        *slog.Logger
	registry   *runtime.Registry
	monitoring *observability.Monitoring
}

func NewModerationRouter(log *slog.Logger, registry *runtime.Registry, monitoring *observability.Monitoring) *ModerationRouter {
	return &ModerationRouter{log: log, registry: registry, monitoring: monitoring}
}

func (r *ModerationRouter) Dispatch(ctx context.Context, actor *runtime.Connection, a ModerationAction) {
	now := time.Now().UTC()
	room := domain.NewRoomID(domain.RoomAudio, a.SessionID)

	switch a.Action {
	case ActionMute:
		r.directed(ctx, actor, a, room, event.MutedByHost, event.ParticipantMuted, func(s *domain.AudioState) {
			s.IsMuted = true
		}, now)
	case ActionPromote:
		r.directed(ctx, actor, a, room, event.PromotedToSpeaker, event.ParticipantPromoted, func(s *domain.AudioState) {
			s.IsSpeaker = true
			s.HandRaised = false
		}, now)
	case ActionKick:
		r.kick(ctx, actor, a, room, now)
	case ActionRaiseHand:
		state := actor.UpdateAudio(func(s *domain.AudioState) {
			s.HandRaised = lo.FromPtrOr(a.Raised, !s.HandRaised)
		})
		r.registry.Broadcast(ctx, room, event.New(event.HandRaised, event.Hand{
			SessionID:     a.SessionID,
			ParticipantID: actor.ParticipantID(),
			Alias:         actor.Alias(),
			Raised:        state.HandRaised,
		}), "")
	case ActionEmojiReaction:
		r.registry.Broadcast(ctx, room, event.New(event.EmojiReaction, event.Reaction{
			SessionID:     a.SessionID,
			ParticipantID: actor.ParticipantID(),
			Alias:         actor.Alias(),
			Emoji:         a.Emoji,
			Timestamp:     now,
		}), "")
	case ActionEmergencyAlert:
		r.log.Warn("Emergency alert raised", "session_id", a.SessionID, "participant_id", actor.ParticipantID())
		r.registry.Broadcast(ctx, room, event.New(event.Emergency, event.Alert{
			SessionID:     a.SessionID,
			ParticipantID: actor.ParticipantID(),
			Alias:         actor.Alias(),
			AlertType:     a.AlertType,
			Message:       a.Message,
			Timestamp:     now,
		}), "")
	case ActionVoiceRequest:
		r.voice(ctx, actor, a, event.VoiceChatRequest, nil, now)
	case ActionVoiceResponse:
		r.voice(ctx, actor, a, event.VoiceChatResponse, lo.ToPtr(a.Accepted), now)
	default:
		r.log.Debug("Unknown moderation action", "action", a.Action)
	}
}

func (r *ModerationRouter) resolve(targetID string, room domain.RoomID) []*runtime.Connection {
	targets := r.registry.ConnectionsInRoom(targetID, room)
	if len(targets) == 0 {
		r.monitoring.IncrModerationNoops()
		r.log.Debug("Moderation target not found", "session_id", room.ID, "participant_id", targetID)
	}
	return targets
}

func (r *ModerationRouter) moderation(actor *runtime.Connection, a ModerationAction, now time.Time) event.Moderation {
	return event.Moderation{
		SessionID:     a.SessionID,
		ParticipantID: a.TargetID,
		ActorID:       actor.ParticipantID(),
		ActorAlias:    actor.Alias(),
		Timestamp:     now,
	}
}

func (r *ModerationRouter) directed(ctx context.Context, actor *runtime.Connection, a ModerationAction,
	room domain.RoomID, direct, broadcast event.Name, apply func(*domain.AudioState), now time.Time) {
	targets := r.resolve(a.TargetID, room)
	if len(targets) == 0 {
		return
	}
	payload := r.moderation(actor, a, now)
	for _, target := range targets {
		target.UpdateAudio(apply)
		r.registry.Send(ctx, target.ID, event.New(direct, payload))
	}
	r.registry.Broadcast(ctx, room, event.New(broadcast, payload), "")
}

func (r *ModerationRouter) kick(ctx context.Context, actor *runtime.Connection, a ModerationAction, room domain.RoomID, now time.Time) {
	targets := r.resolve(a.TargetID, room)
	if len(targets) == 0 {
		return
	}
	payload := r.moderation(actor, a, now)
	for _, target := range targets {
		r.registry.Send(ctx, target.ID, event.New(event.KickedFromRoom, payload))
		r.registry.Leave(target.ID, domain.RoomAudio)
	}
	r.registry.Broadcast(ctx, room, event.New(event.ParticipantKicked, payload), "")
}

// voice delivers to every live connection of the target, in any room.
func (r *ModerationRouter) voice(ctx context.Context, actor *runtime.Connection, a ModerationAction,
	name event.Name, accepted *bool, now time.Time) {
	targets := r.registry.ConnectionsOf(a.TargetID)
	if len(targets) == 0 {
		r.monitoring.IncrModerationNoops()
		return
	}
	payload := event.VoiceChat{
		FromUserID: actor.ParticipantID(),
		FromAlias:  actor.Alias(),
		SessionID:  a.SessionID,
		Accepted:   accepted,
		Timestamp:  now,
	}
	for _, target := range targets {
		r.registry.Send(ctx, target.ID, event.New(name, payload))
	}
}
