// Package hostv1 defines the sanctuary.v1.HostService contract consumed by
// the surrounding application.
package hostv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName                    = "sanctuary.v1.HostService"
	CreateSanctuaryFullMethod      = "/" + ServiceName + "/CreateSanctuary"
	VerifyHostTokenFullMethod      = "/" + ServiceName + "/VerifyHostToken"
	GenerateRecoveryLinkFullMethod = "/" + ServiceName + "/GenerateRecoveryLink"
)

type CreateSanctuaryRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	TTLSeconds  int64  `json:"ttl_seconds"`
}

type CreateSanctuaryResponse struct {
	Sanctuary *SanctuaryInfo `json:"sanctuary"`
	HostToken string         `json:"host_token"`
}

type VerifyHostTokenRequest struct {
	Token string `json:"token"`
}

type VerifyHostTokenResponse struct {
	Sanctuary *SanctuaryInfo `json:"sanctuary"`
}

type GenerateRecoveryLinkRequest struct {
	SanctuaryID string `json:"sanctuary_id"`
	Token       string `json:"token,omitempty"`
}

type GenerateRecoveryLinkResponse struct {
	URL string `json:"url"`
}

// SanctuaryInfo is the public metadata of a sanctuary.
type SanctuaryInfo struct {
	ID               string    `json:"id"`
	Topic            string    `json:"topic"`
	Description      string    `json:"description,omitempty"`
	Emoji            string    `json:"emoji,omitempty"`
	SubmissionsCount int       `json:"submissions_count"`
	LastActivity     time.Time `json:"last_activity"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type HostServiceServer interface {
	CreateSanctuary(context.Context, *CreateSanctuaryRequest) (*CreateSanctuaryResponse, error)
	VerifyHostToken(context.Context, *VerifyHostTokenRequest) (*VerifyHostTokenResponse, error)
	GenerateRecoveryLink(context.Context, *GenerateRecoveryLinkRequest) (*GenerateRecoveryLinkResponse, error)
}

// UnimplementedHostServiceServer can be embedded for forward compatibility.
type UnimplementedHostServiceServer struct{}

func (UnimplementedHostServiceServer) CreateSanctuary(context.Context, *CreateSanctuaryRequest) (*CreateSanctuaryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSanctuary not implemented")
}
func (UnimplementedHostServiceServer) VerifyHostToken(context.Context, *VerifyHostTokenRequest) (*VerifyHostTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyHostToken not implemented")
}
func (UnimplementedHostServiceServer) GenerateRecoveryLink(context.Context, *GenerateRecoveryLinkRequest) (*GenerateRecoveryLinkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GenerateRecoveryLink not implemented")
}

func RegisterHostServiceServer(s grpc.ServiceRegistrar, srv HostServiceServer) {
	s.RegisterService(&HostServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(HostServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(HostServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(HostServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var HostServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HostServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSanctuary",
			Handler:    unary(CreateSanctuaryFullMethod, HostServiceServer.CreateSanctuary),
		},
		{
			MethodName: "VerifyHostToken",
			Handler:    unary(VerifyHostTokenFullMethod, HostServiceServer.VerifyHostToken),
		},
		{
			MethodName: "GenerateRecoveryLink",
			Handler:    unary(GenerateRecoveryLinkFullMethod, HostServiceServer.GenerateRecoveryLink),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sanctuary/v1/host.proto",
}

type HostServiceClient interface {
	CreateSanctuary(ctx context.Context, in *CreateSanctuaryRequest, opts ...grpc.CallOption) (*CreateSanctuaryResponse, error)
	VerifyHostToken(ctx context.Context, in *VerifyHostTokenRequest, opts ...grpc.CallOption) (*VerifyHostTokenResponse, error)
	GenerateRecoveryLink(ctx context.Context, in *GenerateRecoveryLinkRequest, opts ...grpc.CallOption) (*GenerateRecoveryLinkResponse, error)
}

type hostServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHostServiceClient(cc grpc.ClientConnInterface) HostServiceClient {
	return &hostServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hostServiceClient) CreateSanctuary(ctx context.Context, in *CreateSanctuaryRequest, opts ...grpc.CallOption) (*CreateSanctuaryResponse, error) {
	return invoke[CreateSanctuaryResponse](ctx, c.cc, CreateSanctuaryFullMethod, in, opts)
}

func (c *hostServiceClient) VerifyHostToken(ctx context.Context, in *VerifyHostTokenRequest, opts ...grpc.CallOption) (*VerifyHostTokenResponse, error) {
	return invoke[VerifyHostTokenResponse](ctx, c.cc, VerifyHostTokenFullMethod, in, opts)
}

func (c *hostServiceClient) GenerateRecoveryLink(ctx context.Context, in *GenerateRecoveryLinkRequest, opts ...grpc.CallOption) (*GenerateRecoveryLinkResponse, error) {
	return invoke[GenerateRecoveryLinkResponse](ctx, c.cc, GenerateRecoveryLinkFullMethod, in, opts)
}
