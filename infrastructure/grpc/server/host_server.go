package server

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/errors"
	"sanctuary/infrastructure/grpc/hostv1"
	"sanctuary/services"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// HostServer exposes the Host Session Authority to collaborators.
type HostServer struct {
	hostv1.UnimplementedHostServiceServer
	log  *slog.Logger
	host services.IHostService
}

func NewHostServer(log *slog.Logger, host services.IHostService) *HostServer {
	return &HostServer{log: log, host: host}
}

// CreateSanctuary requires an authenticated owner and mints its first host session.
func (s *HostServer) CreateSanctuary(ctx context.Context, req *hostv1.CreateSanctuaryRequest) (*hostv1.CreateSanctuaryResponse, error) {
	owner, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	grant, err := s.host.CreateSanctuary(owner, services.NewSanctuary{
		Topic:       req.Topic,
		Description: req.Description,
		Emoji:       req.Emoji,
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
	}, originFromContext(ctx))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	s.log.Info("Sanctuary created", "sanctuary_id", grant.Sanctuary.ID, "owner_id", owner.UserID)
	return &hostv1.CreateSanctuaryResponse{
		Sanctuary: toSanctuaryInfo(grant.Sanctuary),
		HostToken: grant.Session.Token,
	}, nil
}

func (s *HostServer) VerifyHostToken(_ context.Context, req *hostv1.VerifyHostTokenRequest) (*hostv1.VerifyHostTokenResponse, error) {
	if req.Token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	grant, err := s.host.VerifyToken(req.Token)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &hostv1.VerifyHostTokenResponse{Sanctuary: toSanctuaryInfo(grant.Sanctuary)}, nil
}

// GenerateRecoveryLink accepts either a host token or the authenticated owner.
func (s *HostServer) GenerateRecoveryLink(ctx context.Context, req *hostv1.GenerateRecoveryLinkRequest) (*hostv1.GenerateRecoveryLinkResponse, error) {
	if req.SanctuaryID == "" {
		return nil, status.Error(codes.InvalidArgument, "sanctuary_id is required")
	}
	var identity domain.Identity
	if owner, ok := auth.IdentityFromContext(ctx); ok {
		identity = owner
	}
	link, err := s.host.RecoveryLink(req.SanctuaryID, req.Token, identity)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &hostv1.GenerateRecoveryLinkResponse{URL: link}, nil
}

func toSanctuaryInfo(s domain.Sanctuary) *hostv1.SanctuaryInfo {
	return &hostv1.SanctuaryInfo{
		ID:               s.ID,
		Topic:            s.Topic,
		Description:      s.Description,
		Emoji:            s.Emoji,
		SubmissionsCount: s.SubmissionCount,
		LastActivity:     s.LastActivity(),
		ExpiresAt:        s.ExpiresAt,
	}
}

func originFromContext(ctx context.Context) domain.Origin {
	var origin domain.Origin
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		origin.IPAddress = p.Addr.String()
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if agents := md.Get("user-agent"); len(agents) > 0 {
			origin.UserAgent = agents[0]
		}
	}
	return origin
}
