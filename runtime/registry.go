package runtime

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// room keeps its members in join order. Its own lock serializes broadcasts
// so that every member sees the room's events in submission order.
type room struct {
	mu      sync.Mutex
	members []*Connection
}

// Registry is the Room Membership Manager.
// It maps connection id to connection, participant id to its live
// connections, and room to ordered member list.
//
// Lock order is always registry then room. Broadcast releases the registry
// lock before taking the room lock, so fan-out never holds up joins on other rooms.
type Registry struct {
	mu            sync.RWMutex
	log           *slog.Logger
	connections   map[string]*Connection
	byParticipant map[string]Set
	rooms         map[domain.RoomID]*room
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:           log,
		connections:   make(map[string]*Connection),
		byParticipant: make(map[string]Set),
		rooms:         make(map[domain.RoomID]*room),
	}
}

// Register makes a connection addressable. It belongs to no room yet.
func (r *Registry) Register(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[c.ID] = c
	pID := c.ParticipantID()
	if _, ok := r.byParticipant[pID]; !ok {
		r.byParticipant[pID] = make(Set)
	}
	r.byParticipant[pID][c.ID] = struct{}{}
}

// Unregister removes a connection and every membership it held, returning the
// rooms it occupied. Only the first call for a connection reports ok.
func (r *Registry) Unregister(connectionID string) (map[domain.RoomKind]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[connectionID]
	if !ok {
		return nil, false
	}
	delete(r.connections, connectionID)
	pID := c.ParticipantID()
	if set, ok := r.byParticipant[pID]; ok {
		delete(set, connectionID)
		if len(set) == 0 {
			delete(r.byParticipant, pID)
		}
	}

	rooms := c.clearRooms()
	for kind, id := range rooms {
		r.removeMemberLocked(domain.NewRoomID(kind, id), c)
	}
	return rooms, true
}

// Join puts the connection in a room, replacing any room of the same kind.
// It returns the replaced room id, if any. Joining the room already held is a no-op.
func (r *Registry) Join(connectionID string, roomID domain.RoomID) (previous string, replaced bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[connectionID]
	if !ok {
		return "", false, errors.ErrNotInRoom
	}
	if current, ok := c.Room(roomID.Kind); ok && current == roomID.ID {
		return "", false, nil
	}

	previous, replaced = c.setRoom(roomID.Kind, roomID.ID)
	if replaced {
		r.removeMemberLocked(domain.NewRoomID(roomID.Kind, previous), c)
	}

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{}
		r.rooms[roomID] = rm
	}
	rm.mu.Lock()
	rm.members = append(rm.members, c)
	rm.mu.Unlock()

	return previous, replaced, nil
}

// Leave removes the connection from its room of the given kind.
func (r *Registry) Leave(connectionID string, kind domain.RoomKind) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[connectionID]
	if !ok {
		return "", false
	}
	id, ok := c.clearRoom(kind)
	if !ok {
		return "", false
	}
	r.removeMemberLocked(domain.NewRoomID(kind, id), c)
	return id, true
}

func (r *Registry) removeMemberLocked(roomID domain.RoomID, c *Connection) {
	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}
	rm.mu.Lock()
	rm.members = slices.DeleteFunc(rm.members, func(m *Connection) bool { return m.ID == c.ID })
	empty := len(rm.members) == 0
	rm.mu.Unlock()
	// If no one is left in the room, remove the room entry entirely
	if empty {
		delete(r.rooms, roomID)
	}
}

// Broadcast delivers e to every member of the room in join order,
// skipping excludeConnectionID when it is not empty.
func (r *Registry) Broadcast(ctx context.Context, roomID domain.RoomID, e event.Event, excludeConnectionID string) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for _, member := range rm.members {
		if member.ID == excludeConnectionID {
			continue
		}
		if err := member.sink.Consume(ctx, e); err != nil {
			r.log.Debug("Event not delivered", "room", roomID.String(), "event", e.Name, "error", err)
		}
	}
}

// Send delivers e to a single connection.
func (r *Registry) Send(ctx context.Context, connectionID string, e event.Event) bool {
	r.mu.RLock()
	c, ok := r.connections[connectionID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := c.sink.Consume(ctx, e); err != nil {
		r.log.Debug("Event not delivered", "connection_id", connectionID, "event", e.Name, "error", err)
		return false
	}
	return true
}

// Connection returns a live connection by id.
func (r *Registry) Connection(connectionID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[connectionID]
	return c, ok
}

// ConnectionsOf returns every live connection speaking for a participant.
func (r *Registry) ConnectionsOf(participantID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byParticipant[participantID]
	conns := make([]*Connection, 0, len(set))
	for id := range set {
		if c, ok := r.connections[id]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}

// ConnectionsInRoom returns the connections of a participant currently in the room.
func (r *Registry) ConnectionsInRoom(participantID string, roomID domain.RoomID) []*Connection {
	return lo.Filter(r.ConnectionsOf(participantID), func(c *Connection, _ int) bool {
		id, ok := c.Room(roomID.Kind)
		return ok && id == roomID.ID
	})
}

// Members returns a snapshot of the room members in join order.
func (r *Registry) Members(roomID domain.RoomID) []*Connection {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return slices.Clone(rm.members)
}

// Counts returns the number of live connections and of rooms per kind.
func (r *Registry) Counts() (int, map[string]int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make(map[string]int, len(domain.RoomKinds))
	for id := range r.rooms {
		rooms[id.Kind.String()]++
	}
	return len(r.connections), rooms
}
