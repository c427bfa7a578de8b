package domain

import "fmt"

// RoomKind is one of the four broadcast group families.
// A connection occupies at most one room per kind.
type RoomKind int

const (
	RoomChat RoomKind = iota
	RoomSanctuary
	RoomSanctuaryHost
	RoomAudio
)

// RoomKinds lists every kind, in the order rooms are reconciled on disconnect.
var RoomKinds = []RoomKind{RoomChat, RoomSanctuary, RoomSanctuaryHost, RoomAudio}

func (k RoomKind) String() string {
	switch k {
	case RoomChat:
		return "chat"
	case RoomSanctuary:
		return "sanctuary"
	case RoomSanctuaryHost:
		return "sanctuary_host"
	case RoomAudio:
		return "audio"
	default:
		return fmt.Sprintf("room_kind(%d)", int(k))
	}
}

// RoomID addresses a single room: its kind plus the external session id.
type RoomID struct {
	Kind RoomKind
	ID   string
}

func NewRoomID(kind RoomKind, id string) RoomID {
	return RoomID{Kind: kind, ID: id}
}

func (r RoomID) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
