package server_test

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/infrastructure/grpc/client"
	"sanctuary/infrastructure/grpc/hostv1"
	"sanctuary/infrastructure/grpc/server"
	"sanctuary/repositories"
	"sanctuary/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixture struct {
	listener *bufconn.Listener
	tokens   auth.TokenManager
	host     *services.HostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.DiscardHandler)
	host := services.NewHostService(log,
		repositories.NewHostSessionRepository(db, log),
		repositories.NewSanctuaryRepository(db, log),
		"https://sanctuary.test")
	tokens := auth.NewTokenManager("test-secret", "sanctuary-test")

	listener := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer(grpc.UnaryInterceptor(auth.IdentityInterceptor(tokens)))
	hostv1.RegisterHostServiceServer(s, server.NewHostServer(log, host))
	go func() { _ = s.Serve(listener) }()
	t.Cleanup(s.Stop)

	return &fixture{listener: listener, tokens: tokens, host: host}
}

func (f *fixture) dial(t *testing.T, userID string) *client.HostClient {
	t.Helper()
	var bearer string
	if userID != "" {
		var err error
		bearer, err = f.tokens.GenerateToken(domain.Authenticated{UserID: userID}, time.Hour)
		require.NoError(t, err)
	}
	return f.dialBearer(t, bearer)
}

func (f *fixture) dialBearer(t *testing.T, bearer string) *client.HostClient {
	t.Helper()
	c, err := client.Dial("passthrough:///bufnet", bearer,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return f.listener.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func code(err error) codes.Code {
	return status.Code(err)
}

func TestHostServer_CreateThenVerify(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	// Given an authenticated owner creating a sanctuary
	created, err := f.dial(t, "owner-1").CreateSanctuary(ctx, "Ask me anything", "", "🕊", time.Hour)
	req.NoError(err)
	req.True(auth.IsWellFormedHostToken(created.HostToken))

	// When a collaborator verifies the host token anonymously
	info, err := f.dial(t, "").VerifyHostToken(ctx, created.HostToken)

	// Then the public metadata comes back
	req.NoError(err)
	req.Equal(created.Sanctuary.ID, info.ID)
	req.Equal("Ask me anything", info.Topic)
	req.Equal(0, info.SubmissionsCount)
	req.WithinDuration(time.Now().Add(time.Hour), info.ExpiresAt, time.Minute)
}

func TestHostServer_Errors(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	anonymous := f.dial(t, "")

	_, err := anonymous.CreateSanctuary(ctx, "topic", "", "", time.Hour)
	req.Equal(codes.Unauthenticated, code(err))

	_, err = f.dialBearer(t, "garbage").VerifyHostToken(ctx, "whatever")
	req.Equal(codes.Unauthenticated, code(err))

	_, err = f.dial(t, "owner-1").CreateSanctuary(ctx, "", "", "", time.Hour)
	req.Equal(codes.InvalidArgument, code(err))

	_, err = anonymous.VerifyHostToken(ctx, strings.Repeat("a", 64))
	req.Equal(codes.NotFound, code(err))

	_, err = anonymous.VerifyHostToken(ctx, "")
	req.Equal(codes.InvalidArgument, code(err))
}

func TestHostServer_RevokedTokenIsRefused(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.dial(t, "owner-1").CreateSanctuary(ctx, "topic", "", "", time.Hour)
	req.NoError(err)

	req.NoError(f.host.Revoke(created.HostToken))

	_, err = f.dial(t, "").VerifyHostToken(ctx, created.HostToken)
	req.Equal(codes.PermissionDenied, code(err))
}

func TestHostServer_RecoveryLink(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	owner := f.dial(t, "owner-1")
	created, err := owner.CreateSanctuary(ctx, "topic", "", "", time.Hour)
	req.NoError(err)
	sid := created.Sanctuary.ID
	expected := "https://sanctuary.test/sanctuary/recover/" + sid + "?token=" + created.HostToken

	// With the token
	link, err := f.dial(t, "").RecoveryLink(ctx, sid, created.HostToken)
	req.NoError(err)
	req.Equal(expected, link)

	// As the owner, reusing the live session
	link, err = owner.RecoveryLink(ctx, sid, "")
	req.NoError(err)
	req.Equal(expected, link)

	// Anyone else is refused
	_, err = f.dial(t, "intruder").RecoveryLink(ctx, sid, "")
	req.Equal(codes.PermissionDenied, code(err))
	_, err = f.dial(t, "").RecoveryLink(ctx, "other-sanctuary", created.HostToken)
	req.Equal(codes.PermissionDenied, code(err))
}
