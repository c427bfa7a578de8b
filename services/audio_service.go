package services

import (
	"context"
	"log/slog"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/runtime"

	"github.com/samber/lo"
)

type AudioService struct {
	log      *slog.Logger
	registry *runtime.Registry
}

func NewAudioService(log *slog.Logger, registry *runtime.Registry) *AudioService {
	return &AudioService{log: log, registry: registry}
}

// JoinAudio joins an audio room with the declared role flags, replies with the
// current participants and notifies the others.
// Role flags are taken as declared: media and roles are owned by the audio
// collaborator.
func (s *AudioService) JoinAudio(ctx context.Context, c *runtime.Connection, cmd domain.JoinAudioRoom) error {
	room := domain.NewRoomID(domain.RoomAudio, cmd.SessionID)
	if err := joinRoom(ctx, s.registry, c, room); err != nil {
		return err
	}
	c.SetAlias(cmd.Participant.Alias)
	c.UpdateAudio(func(state *domain.AudioState) {
		*state = domain.AudioState{
			IsHost:      cmd.Participant.IsHost,
			IsModerator: cmd.Participant.IsModerator,
			IsSpeaker:   cmd.Participant.IsHost,
		}
	})

	participants := lo.Map(s.registry.Members(room), func(m *runtime.Connection, _ int) domain.Participant {
		return m.Participant()
	})
	s.registry.Send(ctx, c.ID, event.New(event.AudioRoomJoined, event.AudioRoom{
		SessionID:    cmd.SessionID,
		Participants: participants,
	}))
	s.registry.Broadcast(ctx, room, event.New(event.AudioParticipantJoined, event.AudioParticipant{
		SessionID:   cmd.SessionID,
		Participant: c.Participant(),
	}), c.ID)
	return nil
}
