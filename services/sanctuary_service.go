package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/observability"
	"sanctuary/repositories"
	"sanctuary/runtime"
)

// SanctuaryService handles the public room and the host channel of sanctuaries.
type SanctuaryService struct {
	log         *slog.Logger
	registry    *runtime.Registry
	sanctuaries repositories.ISanctuaryRepository
	host        IHostService
	submissions *SubmissionService
	monitoring  *observability.Monitoring
}

func NewSanctuaryService(
	log *slog.Logger,
	registry *runtime.Registry,
	sanctuaries repositories.ISanctuaryRepository,
	host IHostService,
	submissions *SubmissionService,
	monitoring *observability.Monitoring,
) *SanctuaryService {
	return &SanctuaryService{
		log:         log,
		registry:    registry,
		sanctuaries: sanctuaries,
		host:        host,
		submissions: submissions,
		monitoring:  monitoring,
	}
}

// JoinSanctuary joins the public room of a live sanctuary and notifies the others.
func (s *SanctuaryService) JoinSanctuary(ctx context.Context, c *runtime.Connection, cmd domain.JoinSanctuary) error {
	sanctuary, err := s.sanctuaries.Get(cmd.SanctuaryID)
	if err == nil && !sanctuary.IsLive(time.Now()) {
		err = fmt.Errorf("%w: sanctuary %s", errors.ErrSessionExpired, cmd.SanctuaryID)
	}
	if err != nil {
		s.registry.Send(ctx, c.ID, scopedError(event.SanctuaryError, err, "", cmd.SanctuaryID))
		return err
	}

	c.SetAlias(cmd.Participant.Alias)
	room := domain.NewRoomID(domain.RoomSanctuary, cmd.SanctuaryID)
	if err = joinRoom(ctx, s.registry, c, room); err != nil {
		return err
	}
	s.registry.Broadcast(ctx, room, event.New(event.SanctuaryParticipantJoined, event.SanctuaryParticipant{
		SanctuaryID:   cmd.SanctuaryID,
		ParticipantID: c.ParticipantID(),
		Alias:         c.Alias(),
		IsAnonymous:   cmd.Participant.IsAnonymous || c.Identity().IsAnonymous(),
		Timestamp:     time.Now().UTC(),
	}), c.ID)
	return nil
}

// JoinHost runs host resolution. Success joins the host channel and sends a
// snapshot, failure sends a rejection and leaves the connection untouched.
func (s *SanctuaryService) JoinHost(ctx context.Context, c *runtime.Connection, cmd domain.JoinSanctuaryHost) error {
	grant, err := s.host.Resolve(cmd.SanctuaryID, cmd.HostToken, c.Identity(), c.Origin())
	if err != nil {
		s.monitoring.IncrHostAuthFailures()
		s.log.Debug("Host join refused", "sanctuary_id", cmd.SanctuaryID,
			"token_prefix", domain.TokenPrefix(cmd.HostToken), "operation", "join_host", "error", err)
		s.registry.Send(ctx, c.ID, event.New(event.SanctuaryHostAuthFailed, event.HostAuthFailed{
			Reason:      errors.PublicMessage(err),
			SanctuaryID: cmd.SanctuaryID,
		}))
		return err
	}

	// The host room is joined and the count read with appends held back, so
	// every later submission reaches this connection after the snapshot.
	return s.submissions.WithSanctuaryLocked(cmd.SanctuaryID, func() error {
		if err := joinRoom(ctx, s.registry, c, domain.NewRoomID(domain.RoomSanctuaryHost, cmd.SanctuaryID)); err != nil {
			return err
		}
		sanctuary, err := s.sanctuaries.Get(cmd.SanctuaryID)
		if err != nil {
			s.log.Warn("Host snapshot read failed, using resolved sanctuary",
				"sanctuary_id", cmd.SanctuaryID, "operation", "join_host", "error", err)
			sanctuary = grant.Sanctuary
		}
		s.registry.Send(ctx, c.ID, event.New(event.SanctuaryHostJoined, event.HostSnapshot{
			SanctuaryID:      sanctuary.ID,
			HostToken:        grant.Session.Token,
			SubmissionsCount: sanctuary.SubmissionCount,
			LastActivity:     sanctuary.LastActivity(),
			Topic:            sanctuary.Topic,
			Description:      sanctuary.Description,
			Emoji:            sanctuary.Emoji,
			ExpiresAt:        sanctuary.ExpiresAt,
		}))
		return nil
	})
}

func (s *SanctuaryService) Submit(ctx context.Context, c *runtime.Connection, cmd domain.SanctuaryMessage) error {
	_, err := s.submissions.Submit(ctx, c, cmd)
	return err
}

// MessageRead tells the public room that a submission was read.
func (s *SanctuaryService) MessageRead(ctx context.Context, c *runtime.Connection, cmd domain.SanctuaryMessageRead) {
	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomSanctuary, cmd.SanctuaryID),
		event.New(event.SanctuaryMessageRead, event.Status{
			MessageID: cmd.MessageID,
			SessionID: cmd.SanctuaryID,
			Status:    domain.StatusRead,
			UserID:    c.ParticipantID(),
			Timestamp: time.Now().UTC(),
		}), c.ID)
}

// Ping echoes the payload back with the server time.
func (s *SanctuaryService) Ping(ctx context.Context, c *runtime.Connection, payload json.RawMessage) {
	var echoed any
	if len(payload) > 0 {
		echoed = payload
	}
	s.registry.Send(ctx, c.ID, event.New(event.PongSanctuary, event.Pong{
		Payload:    echoed,
		ServerTime: time.Now().UTC(),
	}))
}
