package services

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/runtime"
)

// Reconciler is the Disconnect Reconciler.
type Reconciler struct {
	log      *slog.Logger
	registry *runtime.Registry
}

func NewReconciler(log *slog.Logger, registry *runtime.Registry) *Reconciler {
	return &Reconciler{log: log, registry: registry}
}

// Disconnect releases the connection and sends one leave notification to
// every room it occupied. Only the first call for a connection has effect.
func (r *Reconciler) Disconnect(ctx context.Context, c *runtime.Connection) {
	rooms, ok := r.registry.Unregister(c.ID)
	if !ok {
		return
	}
	now := time.Now().UTC()
	for _, kind := range domain.RoomKinds {
		id, ok := rooms[kind]
		if !ok || id == "" {
			continue
		}
		r.registry.Broadcast(ctx, domain.NewRoomID(kind, id), leftEvent(c, kind, id, now), c.ID)
	}
	r.log.Debug("Connection reconciled", "connection_id", c.ID, "rooms", len(rooms))
}
