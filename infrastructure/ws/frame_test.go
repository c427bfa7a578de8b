package ws

import (
	"testing"

	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"

	"github.com/stretchr/testify/require"
)

func TestFrame_Command(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.Command
		wantErr error
	}{
		{
			name: "join sanctuary with participant",
			data: `{"type":"join_sanctuary","payload":{"sanctuaryId":"sid-1","participant":{"alias":"Fox","isAnonymous":true}}}`,
			want: domain.JoinSanctuary{SanctuaryID: "sid-1", Participant: domain.ParticipantInfo{Alias: "Fox", IsAnonymous: true}},
		},
		{
			name: "host join with token",
			data: `{"type":"join_sanctuary_host","request_id":"r1","payload":{"sanctuaryId":"sid-1","hostToken":"abc"}}`,
			want: domain.JoinSanctuaryHost{SanctuaryID: "sid-1", HostToken: "abc"},
		},
		{
			name: "voice response",
			data: `{"type":"voice_chat_response","payload":{"targetUserId":"u1","accepted":true}}`,
			want: domain.VoiceChatResponse{TargetUserID: "u1", Accepted: true},
		},
		{
			name: "ping keeps the raw payload",
			data: `{"type":"ping_sanctuary","payload":{"n":1}}`,
			want: domain.PingSanctuary{Payload: []byte(`{"n":1}`)},
		},
		{
			name: "missing payload decodes to zero value",
			data: `{"type":"typing_stop"}`,
			want: domain.TypingStop{},
		},
		{
			name:    "unknown type",
			data:    `{"type":"dance","payload":{}}`,
			wantErr: errors.ErrUnknownCommand,
		},
		{
			name:    "payload of the wrong shape",
			data:    `{"type":"join_chat","payload":[1,2]}`,
			wantErr: errors.ErrInvalidPayload,
		},
		{
			name:    "not json",
			data:    `hello`,
			wantErr: errors.ErrInvalidPayload,
		},
		{
			name:    "no type",
			data:    `{"payload":{}}`,
			wantErr: errors.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			frame, err := ParseFrame([]byte(tt.data))
			var cmd domain.Command
			if err == nil {
				cmd, err = frame.Command()
			}
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}

func TestErrorEvent_HidesInternalCauses(t *testing.T) {
	req := require.New(t)

	e := ErrorEvent("r1", errors.New("badger: value log corrupted"))

	req.Equal(event.Error, e.Name)
	req.Equal("r1", e.RequestID)
	req.Equal(ErrorEnvelope{Error: ErrorBody{Code: errors.CodeInternal, Message: "internal error"}}, e.Payload)
}

func TestEncode(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(event.New(event.HandRaised, event.Hand{SessionID: "a1", ParticipantID: "p1", Raised: true}))

	req.NoError(err)
	req.Equal("hand_raised", frame.Type)
	req.JSONEq(`{"sessionId":"a1","participantId":"p1","alias":"","raised":true}`, string(frame.Payload))
}
