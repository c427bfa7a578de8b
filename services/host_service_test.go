package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/mocks"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestJoinHost_OwnerWithoutTokenMintsSession(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()

	// Given a fresh sanctuary owned by A
	h.createSanctuary(t, "sid-2", "owner-a", time.Now().Add(time.Hour))
	a := h.owner("owner-a")

	// When A joins the host channel without a token
	err := h.dispatcher.Handle(ctx, a.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-2"})

	// Then a session is minted and a snapshot returned
	req.NoError(err)
	snapshot := only(t, a, event.SanctuaryHostJoined).Payload.(event.HostSnapshot)
	req.Zero(snapshot.SubmissionsCount)
	req.True(auth.IsWellFormedHostToken(snapshot.HostToken))
	req.Equal("Ask me anything", snapshot.Topic)

	session, err := h.sessions.FindByToken(snapshot.HostToken)
	req.NoError(err)
	req.Equal("owner-a", session.OwnerID)
	req.Equal("127.0.0.1", session.IPAddress)
	room, ok := a.conn.Room(domain.RoomSanctuaryHost)
	req.True(ok)
	req.Equal("sid-2", room)
}

func TestJoinHost_ActiveTokenReturnsSubmissionCount(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))

	// Given an owner session and two submissions
	grant, err := h.host.Resolve("sid-1", "", domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	req.NoError(err)
	author := h.anonymous()
	for _, content := range []string{"one", "two"} {
		_, err = h.submissions.Submit(ctx, author.conn, domain.SanctuaryMessage{SanctuaryID: "sid-1", Content: content})
		req.NoError(err)
	}

	// When an anonymous connection presents the token
	device := h.anonymous()
	req.NoError(h.dispatcher.Handle(ctx, device.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-1", HostToken: grant.Session.Token}))

	// Then it is granted host access with the current count
	snapshot := only(t, device, event.SanctuaryHostJoined).Payload.(event.HostSnapshot)
	req.Equal(2, snapshot.SubmissionsCount)
	req.Equal(grant.Session.Token, snapshot.HostToken)
	req.True(snapshot.LastActivity.After(grant.Sanctuary.CreatedAt))

	touched, err := h.sessions.FindByToken(grant.Session.Token)
	req.NoError(err)
	req.True(touched.LastAccessedAt.After(grant.Session.LastAccessedAt) || touched.LastAccessedAt.Equal(grant.Session.LastAccessedAt))
}

func TestJoinHost_ExpiredTokenIsRefused(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx := context.Background()
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))

	// Given an active session whose expiry has passed
	token, err := auth.NewHostToken()
	req.NoError(err)
	req.NoError(h.sessions.Save(domain.HostSession{
		SanctuaryID: "sid-1",
		Token:       token,
		OwnerID:     "owner-a",
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
		IsActive:    true,
	}))

	// When even the owner presents it
	a := h.owner("owner-a")
	req.NoError(h.dispatcher.Handle(ctx, a.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-1", HostToken: token}))

	// Then the request is refused but the connection stays usable
	failure := only(t, a, event.SanctuaryHostAuthFailed).Payload.(event.HostAuthFailed)
	req.Equal("sid-1", failure.SanctuaryID)
	req.Contains(failure.Reason, "host authorization failed")
	_, ok := a.conn.Room(domain.RoomSanctuaryHost)
	req.False(ok)
	req.Equal(uint64(1), h.monitoring.GetLatest().HostAuthFailures)

	req.NoError(h.dispatcher.Handle(ctx, a.conn, domain.JoinSanctuary{SanctuaryID: "sid-1"}))
	_, ok = a.conn.Room(domain.RoomSanctuary)
	req.True(ok)
}

func TestResolve_Failures(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	h.createSanctuary(t, "sid-1", "owner-a", now.Add(time.Hour))
	h.createSanctuary(t, "sid-old", "owner-a", now.Add(-time.Minute))
	grant, err := h.host.Resolve("sid-1", "", domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	require.NoError(t, err)

	tests := []struct {
		name        string
		sanctuaryID string
		token       string
		identity    domain.Identity
	}{
		{"anonymous without token", "sid-1", "", domain.Anonymous{ID: "anon_1"}},
		{"stranger without token", "sid-1", "", domain.Authenticated{UserID: "stranger"}},
		{"unknown token from anonymous", "sid-1", strings.Repeat("a", 64), domain.Anonymous{ID: "anon_1"}},
		{"token of another sanctuary", "sid-old", grant.Session.Token, domain.Authenticated{UserID: "owner-a"}},
		{"owner of an expired sanctuary", "sid-old", "", domain.Authenticated{UserID: "owner-a"}},
		{"unknown sanctuary", "nope", "", domain.Authenticated{UserID: "owner-a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.host.Resolve(tt.sanctuaryID, tt.token, tt.identity, domain.Origin{})
			require.ErrorIs(t, err, errors.ErrAuthorization)
		})
	}
}

func TestResolve_RevokedTokenFailsOnNextLookup(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	grant, err := h.host.Resolve("sid-1", "", domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	req.NoError(err)

	req.NoError(h.host.Revoke(grant.Session.Token))

	_, err = h.host.Resolve("sid-1", grant.Session.Token, domain.Anonymous{ID: "anon_1"}, domain.Origin{})
	req.ErrorIs(err, errors.ErrAuthorization)
	_, err = h.host.VerifyToken(grant.Session.Token)
	req.ErrorIs(err, errors.ErrAuthorization)

	// The owner can still establish a new session
	renewed, err := h.host.Resolve("sid-1", "", domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	req.NoError(err)
	req.True(renewed.Minted)
	req.NotEqual(grant.Session.Token, renewed.Session.Token)
}

func TestResolve_OwnerMintIsIdempotent(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	owner := domain.Authenticated{UserID: "owner-a"}

	// When the owner joins from several devices at once
	const devices = 8
	tokens := make(chan string, devices)
	var wg sync.WaitGroup
	for range devices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, err := h.host.Resolve("sid-1", "", owner, domain.Origin{})
			if err == nil {
				tokens <- grant.Session.Token
			}
		}()
	}
	wg.Wait()
	close(tokens)

	// Then all of them share a single session
	var distinct = map[string]struct{}{}
	for token := range tokens {
		distinct[token] = struct{}{}
	}
	req.Len(distinct, 1)
}

func TestResolve_OwnerMintKeepsWellFormedSuppliedToken(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	supplied, err := auth.NewHostToken()
	req.NoError(err)

	grant, err := h.host.Resolve("sid-1", supplied, domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	req.NoError(err)
	req.True(grant.Minted)
	req.Equal(supplied, grant.Session.Token)

	garbage, err := h.host.Resolve("sid-1", "not-a-token", domain.Authenticated{UserID: "owner-a"}, domain.Origin{})
	req.NoError(err)
	req.False(garbage.Minted)
	req.Equal(supplied, garbage.Session.Token)
}

func TestHostService_CollaboratorOperations(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	owner := domain.Authenticated{UserID: "owner-a"}

	// Given a sanctuary created by its owner
	grant, err := h.host.CreateSanctuary(owner, NewSanctuary{Topic: "Questions", Emoji: "🌱", TTL: time.Hour}, domain.Origin{})
	req.NoError(err)
	req.True(grant.Minted)
	req.Equal("owner-a", grant.Sanctuary.OwnerID)
	req.WithinDuration(time.Now().Add(time.Hour), grant.Session.ExpiresAt, time.Minute)

	// When verifying the token
	verified, err := h.host.VerifyToken(grant.Session.Token)
	req.NoError(err)
	req.Equal("Questions", verified.Sanctuary.Topic)

	// And generating a recovery link with and without the token
	link, err := h.host.RecoveryLink(grant.Sanctuary.ID, grant.Session.Token, nil)
	req.NoError(err)
	req.Equal("https://sanctuary.test/sanctuary/recover/"+grant.Sanctuary.ID+"?token="+grant.Session.Token, link)
	ownerLink, err := h.host.RecoveryLink(grant.Sanctuary.ID, "", owner)
	req.NoError(err)
	req.Equal(link, ownerLink)

	// Then unknown tokens and invalid input are refused
	_, err = h.host.VerifyToken("missing")
	req.ErrorIs(err, errors.ErrSessionNotFound)
	_, err = h.host.RecoveryLink(grant.Sanctuary.ID, "", domain.Anonymous{ID: "anon_1"})
	req.ErrorIs(err, errors.ErrAuthorization)
	_, err = h.host.CreateSanctuary(owner, NewSanctuary{TTL: time.Hour}, domain.Origin{})
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestResolve_RevocationDuringRefreshWins(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockIHostSessionRepository(ctrl)
	h := newHarness(t)
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	host := NewHostService(h.log, sessions, h.sanctuaries, "https://sanctuary.test")
	token, err := auth.NewHostToken()
	req.NoError(err)

	// Given a session read as usable but revoked before it is touched
	sessions.EXPECT().FindByToken(token).
		Return(domain.HostSession{SanctuaryID: "sid-1", Token: token, IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}, nil).
		Times(1)
	sessions.EXPECT().Touch(token, gomock.Any()).
		Return(domain.HostSession{SanctuaryID: "sid-1", Token: token}, errors.ErrAuthorization).
		Times(1)

	// When the token is resolved
	grant, err := host.Resolve("sid-1", token, domain.Anonymous{ID: "anon_1"}, domain.Origin{})

	// Then no grant is issued
	req.ErrorIs(err, errors.ErrAuthorization)
	req.Empty(grant.Session.Token)
}

func TestResolve_OwnerAfterRestartGetsFreshSession(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	h.createSanctuary(t, "sid-1", "owner-a", time.Now().Add(time.Hour))
	owner := domain.Authenticated{UserID: "owner-a"}
	first, err := h.host.Resolve("sid-1", "", owner, domain.Origin{})
	req.NoError(err)

	// Given a new process that only has the hashed store
	restarted := NewHostService(h.log, h.sessions, h.sanctuaries, "https://sanctuary.test")

	// When the owner joins without a token
	second, err := restarted.Resolve("sid-1", "", owner, domain.Origin{})
	req.NoError(err)

	// Then a new session is minted and the earlier token keeps working
	req.True(second.Minted)
	req.NotEqual(first.Session.Token, second.Session.Token)
	_, err = restarted.VerifyToken(first.Session.Token)
	req.NoError(err)

	// And presenting the earlier token reuses that session
	again, err := restarted.Resolve("sid-1", first.Session.Token, owner, domain.Origin{})
	req.NoError(err)
	req.False(again.Minted)
	req.Equal(first.Session.Token, again.Session.Token)
}

func TestJoinHost_SnapshotCountsSubmissionLandedAfterResolve(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sanctuaries := mocks.NewMockISanctuaryRepository(ctrl)
	h := newHarness(t)
	ctx := context.Background()
	host := NewHostService(h.log, h.sessions, sanctuaries, "https://sanctuary.test")
	service := NewSanctuaryService(h.log, h.registry, sanctuaries, host, h.submissions, h.monitoring)
	resolved := domain.Sanctuary{ID: "sid-1", Topic: "AMA", OwnerID: "owner-a",
		CreatedAt: time.Now().Add(-time.Minute), ExpiresAt: time.Now().Add(time.Hour), IsActive: true}
	landed := resolved
	landed.SubmissionCount = 1
	landed.LastSubmissionAt = lo.ToPtr(time.Now())

	// Given a submission appended between host resolution and the channel join
	gomock.InOrder(
		sanctuaries.EXPECT().Get("sid-1").Return(resolved, nil).Times(1),
		sanctuaries.EXPECT().Get("sid-1").Return(landed, nil).Times(1),
	)

	// When the owner joins the host channel
	owner := h.owner("owner-a")
	req.NoError(service.JoinHost(ctx, owner.conn, domain.JoinSanctuaryHost{SanctuaryID: "sid-1"}))

	// Then the snapshot counts it
	snapshot := only(t, owner, event.SanctuaryHostJoined).Payload.(event.HostSnapshot)
	req.Equal(1, snapshot.SubmissionsCount)
	_, ok := owner.conn.Room(domain.RoomSanctuaryHost)
	req.True(ok)
}
