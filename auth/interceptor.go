package auth

import (
	"context"
	"strings"

	"sanctuary/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityInterceptor resolves an optional bearer credential from the gRPC
// metadata. Calls without credential go through without identity, a present
// but invalid credential is rejected.
func IdentityInterceptor(tokens TokenManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}

		tokenStr := strings.TrimPrefix(values[0], bearerPrefix)
		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		identity := domain.Authenticated{
			UserID:      claims.UserID,
			Alias:       claims.Alias,
			AvatarIndex: claims.AvatarIndex,
		}
		return handler(WithIdentity(ctx, identity), req)
	}
}

func WithIdentity(ctx context.Context, identity domain.Authenticated) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity attached by IdentityInterceptor.
func IdentityFromContext(ctx context.Context) (domain.Authenticated, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Authenticated)
	return identity, ok
}
