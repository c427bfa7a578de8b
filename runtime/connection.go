package runtime

import (
	"maps"
	"sync"

	"sanctuary/contract"
	"sanctuary/domain"

	"github.com/google/uuid"
)

// Connection is the registry view of one live transport.
// Identity and origin are fixed at creation. Room references and audio
// state are only changed through the Registry.
type Connection struct {
	ID       string
	identity domain.Identity
	origin   domain.Origin
	sink     contract.EventSink

	mu    sync.RWMutex
	alias string
	rooms map[domain.RoomKind]string
	audio domain.AudioState
}

func NewConnection(identity domain.Identity, origin domain.Origin, sink contract.EventSink) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		identity: identity,
		origin:   origin,
		sink:     sink,
		alias:    identity.DisplayAlias(),
		rooms:    make(map[domain.RoomKind]string),
	}
}

func (c *Connection) Identity() domain.Identity { return c.identity }
func (c *Connection) Origin() domain.Origin     { return c.origin }
func (c *Connection) Sink() contract.EventSink  { return c.sink }

// ParticipantID is shorthand for Identity().ParticipantID().
func (c *Connection) ParticipantID() string { return c.identity.ParticipantID() }

// Alias is the display name last chosen on a join, or the identity alias.
func (c *Connection) Alias() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alias
}

// SetAlias keeps the identity alias when the requested one is empty.
func (c *Connection) SetAlias(alias string) {
	if alias == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alias = alias
}

// Room returns the current room of a kind.
func (c *Connection) Room(kind domain.RoomKind) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.rooms[kind]
	return id, ok
}

// Rooms returns a copy of the current room per kind.
func (c *Connection) Rooms() map[domain.RoomKind]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.rooms)
}

func (c *Connection) AudioState() domain.AudioState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.audio
}

// UpdateAudio applies fn to the audio state and returns the result.
func (c *Connection) UpdateAudio(fn func(*domain.AudioState)) domain.AudioState {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.audio)
	return c.audio
}

// Participant builds the moderation view of this connection.
func (c *Connection) Participant() domain.Participant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.NewParticipant(c.identity.ParticipantID(), c.alias, c.audio)
}

func (c *Connection) setRoom(kind domain.RoomKind, id string) (previous string, had bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, had = c.rooms[kind]
	c.rooms[kind] = id
	return previous, had
}

func (c *Connection) clearRoom(kind domain.RoomKind) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.rooms[kind]
	delete(c.rooms, kind)
	if kind == domain.RoomAudio {
		c.audio = domain.AudioState{}
	}
	return id, ok
}

func (c *Connection) clearRooms() map[domain.RoomKind]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := c.rooms
	c.rooms = make(map[domain.RoomKind]string)
	c.audio = domain.AudioState{}
	return rooms
}
