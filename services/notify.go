package services

import (
	"context"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/runtime"
)

// leftEvent builds the leave notification of a room kind for a connection.
func leftEvent(c *runtime.Connection, kind domain.RoomKind, roomID string, now time.Time) event.Event {
	pID := c.ParticipantID()
	name := event.LeftEventFor(kind)
	switch kind {
	case domain.RoomChat:
		return event.New(name, event.UserPresence{
			SessionID:   roomID,
			UserID:      pID,
			Alias:       c.Alias(),
			IsAnonymous: c.Identity().IsAnonymous(),
			Timestamp:   now,
		})
	case domain.RoomSanctuary:
		return event.New(name, event.SanctuaryParticipant{
			SanctuaryID:   roomID,
			ParticipantID: pID,
			Alias:         c.Alias(),
			IsAnonymous:   c.Identity().IsAnonymous(),
			Timestamp:     now,
		})
	case domain.RoomSanctuaryHost:
		return event.New(name, event.HostLeft{
			SanctuaryID: roomID,
			HostID:      pID,
			Timestamp:   now,
		})
	default:
		return event.New(name, event.AudioLeft{
			SessionID:     roomID,
			ParticipantID: pID,
			Timestamp:     now,
		})
	}
}

// joinRoom moves a connection into a room and tells the replaced room, if any, that it left.
func joinRoom(ctx context.Context, registry *runtime.Registry, c *runtime.Connection, roomID domain.RoomID) error {
	previous, replaced, err := registry.Join(c.ID, roomID)
	if err != nil {
		return err
	}
	if replaced {
		registry.Broadcast(ctx, domain.NewRoomID(roomID.Kind, previous),
			leftEvent(c, roomID.Kind, previous, time.Now().UTC()), c.ID)
	}
	return nil
}

// scopedError is the error event sent back to the requester only.
func scopedError(name event.Name, err error, sessionID, sanctuaryID string) event.Event {
	return event.New(name, event.ScopedError{
		Code:        errors.Code(err),
		Message:     errors.PublicMessage(err),
		SessionID:   sessionID,
		SanctuaryID: sanctuaryID,
	})
}
