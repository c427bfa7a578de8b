package services

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/observability"
	"sanctuary/repositories"
	"sanctuary/runtime"
)

// SubmissionService is the Submission Persistence Bridge.
// Appends to one sanctuary are serialized in process so that broadcast order
// follows append order. Nothing is broadcast unless the append is durable.
type SubmissionService struct {
	log         *slog.Logger
	sanctuaries repositories.ISanctuaryRepository
	registry    *runtime.Registry
	monitoring  *observability.Monitoring
	locks       *runtime.KeyedMutex
}

func NewSubmissionService(
	log *slog.Logger,
	sanctuaries repositories.ISanctuaryRepository,
	registry *runtime.Registry,
	monitoring *observability.Monitoring,
) *SubmissionService {
	return &SubmissionService{
		log:         log,
		sanctuaries: sanctuaries,
		registry:    registry,
		monitoring:  monitoring,
		locks:       runtime.NewKeyedMutex(),
	}
}

// Submit appends a submission then fans it out to the public room and to the
// host channel with the running count. On failure only the author hears about it.
func (s *SubmissionService) Submit(ctx context.Context, author *runtime.Connection, cmd domain.SanctuaryMessage) (domain.Submission, error) {
	unlock := s.locks.Lock(cmd.SanctuaryID)
	defer unlock()

	now := time.Now().UTC()
	alias := cmd.ParticipantAlias
	if alias == "" {
		alias = author.Alias()
	}
	kind := domain.SubmissionType(cmd.Type)
	if kind == "" {
		kind = domain.SubmissionText
	}
	submission := domain.Submission{
		ID:            domain.NewSubmissionID(now),
		SanctuaryID:   cmd.SanctuaryID,
		ParticipantID: author.ParticipantID(),
		Alias:         alias,
		Content:       cmd.Content,
		Type:          kind,
		Timestamp:     now,
	}

	sanctuary, err := s.sanctuaries.AppendSubmission(submission, now)
	if err != nil {
		if errors.Is(err, errors.ErrPersistence) {
			s.monitoring.IncrPersistenceFailures()
		}
		s.log.Debug("Submission refused", "sanctuary_id", cmd.SanctuaryID, "operation", "submit", "error", err)
		s.registry.Send(ctx, author.ID, scopedError(event.SanctuaryError, err, "", cmd.SanctuaryID))
		return domain.Submission{}, err
	}
	s.monitoring.IncrSubmissions()

	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomSanctuary, sanctuary.ID),
		event.New(event.SanctuaryNewMessage, event.Submission{
			SanctuaryID: sanctuary.ID,
			Submission:  submission,
		}), "")
	s.registry.Broadcast(ctx, domain.NewRoomID(domain.RoomSanctuaryHost, sanctuary.ID),
		event.New(event.SanctuaryNewSubmission, event.NewSubmission{
			SanctuaryID:      sanctuary.ID,
			Submission:       submission,
			SubmissionsCount: sanctuary.SubmissionCount,
		}), "")
	return submission, nil
}

// WithSanctuaryLocked runs fn while no submission can be appended to the
// sanctuary, so fn observes a count that no in-flight broadcast has overtaken.
func (s *SubmissionService) WithSanctuaryLocked(sanctuaryID string, fn func() error) error {
	unlock := s.locks.Lock(sanctuaryID)
	defer unlock()
	return fn()
}
