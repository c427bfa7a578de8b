package client

import (
	"context"
	"time"

	"sanctuary/infrastructure/grpc/hostv1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// HostClient calls sanctuary.v1.HostService, optionally as an authenticated user.
type HostClient struct {
	Client hostv1.HostServiceClient
	conn   *grpc.ClientConn
	bearer string
}

// Dial connects without transport security, the service runs behind the
// application's own edge.
func Dial(address, bearer string, opts ...grpc.DialOption) (*HostClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}
	return &HostClient{Client: hostv1.NewHostServiceClient(conn), conn: conn, bearer: bearer}, nil
}

func (c *HostClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *HostClient) outgoing(ctx context.Context) context.Context {
	if c.bearer == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.bearer)
}

func (c *HostClient) CreateSanctuary(ctx context.Context, topic, description, emoji string, ttl time.Duration) (*hostv1.CreateSanctuaryResponse, error) {
	return c.Client.CreateSanctuary(c.outgoing(ctx), &hostv1.CreateSanctuaryRequest{
		Topic:       topic,
		Description: description,
		Emoji:       emoji,
		TTLSeconds:  int64(ttl / time.Second),
	})
}

func (c *HostClient) VerifyHostToken(ctx context.Context, token string) (*hostv1.SanctuaryInfo, error) {
	resp, err := c.Client.VerifyHostToken(c.outgoing(ctx), &hostv1.VerifyHostTokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Sanctuary, nil
}

func (c *HostClient) RecoveryLink(ctx context.Context, sanctuaryID, token string) (string, error) {
	resp, err := c.Client.GenerateRecoveryLink(c.outgoing(ctx), &hostv1.GenerateRecoveryLinkRequest{
		SanctuaryID: sanctuaryID,
		Token:       token,
	})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
