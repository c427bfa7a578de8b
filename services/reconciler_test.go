package services

import (
	"context"
	"testing"
	"time"

	"sanctuary/domain"
	"sanctuary/domain/event"

	"github.com/stretchr/testify/require"
)

func TestDisconnect_EmitsOneLeavePerRoom(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	leaving := h.owner("leaving")
	chatPeer := h.owner("chat-peer")
	audioPeer := h.owner("audio-peer")

	// Given a connection in a chat room and an audio room
	for _, c := range []client{leaving, chatPeer} {
		req.NoError(h.dispatcher.Handle(ctx, c.conn, domain.JoinChat{SessionID: "chat-1"}))
	}
	audioRoom(t, h, "audio-1", leaving, audioPeer)
	chatPeer.drain()

	// When it disconnects twice
	h.reconciler.Disconnect(ctx, leaving.conn)
	h.reconciler.Disconnect(ctx, leaving.conn)

	// Then each room hears exactly one leave
	left := only(t, chatPeer, event.UserLeft).Payload.(event.UserPresence)
	req.Equal("leaving", left.UserID)
	audioLeft := only(t, audioPeer, event.AudioParticipantLeft).Payload.(event.AudioLeft)
	req.Equal("leaving", audioLeft.ParticipantID)
	req.Equal("audio-1", audioLeft.SessionID)
	req.Empty(leaving.drain())
	req.Len(h.registry.Members(domain.NewRoomID(domain.RoomChat, "chat-1")), 1)
	req.Len(h.registry.Members(domain.NewRoomID(domain.RoomAudio, "audio-1")), 1)
	_, ok := h.registry.Connection(leaving.conn.ID)
	req.False(ok)
}

func TestDisconnect_HostChannelAndPublicRoom(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	host := h.owner("owner-a")
	otherHost := h.owner("owner-a")
	visitor := h.anonymous()
	req.NoError(h.dispatcher.Handle(ctx, host.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-1"}))
	req.NoError(h.dispatcher.Handle(ctx, otherHost.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-1"}))
	req.NoError(h.dispatcher.Handle(ctx, host.conn, domain.JoinSanctuary{SanctuaryID: "sid-1"}))
	req.NoError(h.dispatcher.Handle(ctx, visitor.conn, domain.JoinSanctuary{SanctuaryID: "sid-1"}))
	otherHost.drain()
	visitor.drain()

	h.reconciler.Disconnect(ctx, host.conn)

	req.Equal(event.SanctuaryHostLeft, only(t, otherHost, event.SanctuaryHostLeft).Name)
	req.Equal(event.SanctuaryParticipantLeft, only(t, visitor, event.SanctuaryParticipantLeft).Name)
}

func TestDisconnect_WithoutRooms(t *testing.T) {
	h := newHarness(t)
	lonely := h.anonymous()
	require.NotPanics(t, func() { h.reconciler.Disconnect(context.Background(), lonely.conn) })
}
