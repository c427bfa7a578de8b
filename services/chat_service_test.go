package services

import (
	"context"
	"encoding/base64"
	"testing"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChat_JoinPostAndHistory(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	alice := h.owner("alice")
	bob := h.owner("bob")

	// Given alice then bob joining the chat
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.JoinChat{SessionID: "chat-1", UserType: "member"}))
	req.NoError(h.dispatcher.Handle(ctx, bob.conn, domain.JoinChat{SessionID: "chat-1"}))
	req.Equal(event.UserJoined, only(t, alice, event.UserJoined).Name)
	req.Empty(bob.drain())

	// When bob types and posts
	req.NoError(h.dispatcher.Handle(ctx, bob.conn, domain.TypingStart{SessionID: "chat-1"}))
	req.NoError(h.dispatcher.Handle(ctx, bob.conn, domain.SendMessage{SessionID: "chat-1", Content: "hi", Type: "text"}))

	// Then alice sees both, bob sees his own message echoed
	req.Equal([]event.Name{event.UserTyping, event.NewMessage}, names(alice.drain()))
	posted := only(t, bob, event.NewMessage).Payload.(event.ChatMessage)
	req.Equal("hi", posted.Content)

	history, _, err := h.chat.GetMessages("chat-1", nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(posted.ID, history[0].ID.String())

	// And read receipts go to the others only
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.MessageRead{MessageID: posted.ID, SessionID: "chat-1"}))
	status := only(t, bob, event.MsgStatus).Payload.(event.Status)
	req.Equal(domain.StatusRead, status.Status)
	req.Empty(alice.drain())
}

func TestChat_SwitchingRoomNotifiesPreviousRoom(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	alice := h.owner("alice")
	bob := h.owner("bob")
	req.NoError(h.dispatcher.Handle(ctx, bob.conn, domain.JoinChat{SessionID: "chat-1"}))
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.JoinChat{SessionID: "chat-1"}))
	bob.drain()

	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.JoinChat{SessionID: "chat-2"}))

	req.Equal(event.UserLeft, only(t, bob, event.UserLeft).Name)
}

func TestChat_PersistenceFailureOnlyAnswersSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	h := newHarness(t)
	chat := NewChatService(h.log, h.registry, repository, h.monitoring)
	ctx := context.Background()
	alice := h.owner("alice")
	bob := h.owner("bob")
	req.NoError(chat.JoinChat(ctx, alice.conn, domain.JoinChat{SessionID: "chat-1"}))
	req.NoError(chat.JoinChat(ctx, bob.conn, domain.JoinChat{SessionID: "chat-1"}))
	alice.drain()

	repository.EXPECT().StoreMessage(gomock.Any()).
		Return(errors.Wrap(errors.ErrPersistence, errors.New("badger: value log corrupted"))).
		Times(1)

	_, err := chat.PostMessage(ctx, bob.conn, domain.SendMessage{SessionID: "chat-1", Content: "hi"})

	req.ErrorIs(err, errors.ErrPersistence)
	scoped := only(t, bob, event.ChatError).Payload.(event.ScopedError)
	req.Equal(errors.CodePersistenceFailed, scoped.Code)
	req.NotContains(scoped.Message, "badger")
	req.Empty(alice.drain())
}

func TestChat_Attachments(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	alice := h.owner("alice")
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.JoinChat{SessionID: "chat-1"}))

	// An inline text attachment is sniffed and accepted
	text := base64.StdEncoding.EncodeToString([]byte("meeting notes"))
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.SendMessage{SessionID: "chat-1",
		Attachment: &domain.AttachmentPayload{Name: "notes.txt", Data: text}}))
	posted := only(t, alice, event.NewMessage).Payload.(event.ChatMessage)
	req.Equal("text/plain", posted.Attachment.MimeType)
	req.Equal(len("meeting notes"), posted.Attachment.Size)

	// An executable is refused before anything is stored
	elf := base64.StdEncoding.EncodeToString([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0x3e, 0})
	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.SendMessage{SessionID: "chat-1",
		Attachment: &domain.AttachmentPayload{Name: "run.bin", Data: elf}}))
	scoped := only(t, alice, event.ChatError).Payload.(event.ScopedError)
	req.Equal(errors.CodeInvalidArgument, scoped.Code)

	history, _, err := h.chat.GetMessages("chat-1", nil)
	req.NoError(err)
	req.Len(history, 1)
}

func TestDispatcher_RejectsInvalidCommands(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	alice := h.owner("alice")

	err := h.dispatcher.Handle(context.Background(), alice.conn, domain.KickParticipant{SessionID: "audio-1"})
	req.ErrorIs(err, errors.ErrInvalidPayload)
	req.Empty(alice.drain())
}

func TestSanctuary_PingAndJoinErrors(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	alice := h.anonymous()

	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.PingSanctuary{Payload: []byte(`{"n":1}`)}))
	pong := only(t, alice, event.PongSanctuary).Payload.(event.Pong)
	req.False(pong.ServerTime.IsZero())

	req.NoError(h.dispatcher.Handle(ctx, alice.conn, domain.JoinSanctuary{SanctuaryID: "missing"}))
	req.Equal(errors.CodeNotFound, only(t, alice, event.SanctuaryError).Payload.(event.ScopedError).Code)
	_, ok := alice.conn.Room(domain.RoomSanctuary)
	req.False(ok)
}

func TestAudio_JoinRepliesWithParticipants(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	host := h.owner("host")
	guest := h.owner("guest")

	req.NoError(h.dispatcher.Handle(ctx, host.conn, domain.JoinAudioRoom{SessionID: "audio-1",
		Participant: domain.ParticipantInfo{Alias: "The Host", IsHost: true}}))
	host.drain()
	req.NoError(h.dispatcher.Handle(ctx, guest.conn, domain.JoinAudioRoom{SessionID: "audio-1",
		Participant: domain.ParticipantInfo{Alias: "Guest"}}))

	room := only(t, guest, event.AudioRoomJoined).Payload.(event.AudioRoom)
	req.Len(room.Participants, 2)
	req.Equal("The Host", room.Participants[0].Alias)
	req.True(room.Participants[0].IsSpeaker)
	req.False(room.Participants[1].IsSpeaker)
	joined := only(t, host, event.AudioParticipantJoined).Payload.(event.AudioParticipant)
	req.Equal("Guest", joined.Participant.Alias)
}
