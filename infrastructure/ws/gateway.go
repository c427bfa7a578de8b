package ws

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"
	"sanctuary/observability"
	"sanctuary/runtime"
	"sanctuary/services"
	"sanctuary/sink"

	"golang.org/x/net/websocket"
)

type Limits struct {
	MaxFrameBytes      int
	MaxFramesPerSecond int
	MaxDecodeErrors    int
	BufferSize         int
	WriteTimeout       time.Duration
}

// Gateway is the Connection Gateway. It authenticates the upgrade request,
// registers the connection and runs one reader and one writer per socket.
type Gateway struct {
	log           *slog.Logger
	authenticator auth.Gateway
	registry      *runtime.Registry
	dispatcher    *services.Dispatcher
	reconciler    *services.Reconciler
	monitoring    *observability.Monitoring
	limits        Limits
	origins       map[string]struct{}
}

func NewGateway(
	log *slog.Logger,
	authenticator auth.Gateway,
	registry *runtime.Registry,
	dispatcher *services.Dispatcher,
	reconciler *services.Reconciler,
	monitoring *observability.Monitoring,
	limits Limits,
) *Gateway {
	return &Gateway{
		log:           log,
		authenticator: authenticator,
		registry:      registry,
		dispatcher:    dispatcher,
		reconciler:    reconciler,
		monitoring:    monitoring,
		limits:        limits,
		origins:       map[string]struct{}{},
	}
}

// WithAllowedOrigins accepts browser upgrades from these origins on top of
// the gateway's own host. Entries are URLs, only scheme and host are kept.
func (g *Gateway) WithAllowedOrigins(origins ...string) *Gateway {
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			g.origins[strings.ToLower(u.Scheme+"://"+u.Host)] = struct{}{}
		}
	}
	return g
}

// checkOrigin refuses cross-site upgrades. Browsers attach the auth cookie to
// any page's socket, so a foreign Origin must never reach authentication.
// Clients that send no Origin are not browsers and carry their own credential.
func (g *Gateway) checkOrigin(r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: malformed origin", errors.ErrAuthentication)
	}
	if strings.EqualFold(u.Host, r.Host) {
		return nil
	}
	if _, ok := g.origins[strings.ToLower(u.Scheme+"://"+u.Host)]; ok {
		return nil
	}
	return fmt.Errorf("%w: origin %s not allowed", errors.ErrAuthentication, origin)
}

// ServeHTTP rejects a foreign origin, then a present but invalid credential,
// before upgrading.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := g.checkOrigin(r); err != nil {
		g.log.Warn("WebSocket connection refused", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	identity, err := g.authenticator.Authenticate(auth.CredentialFromRequest(r))
	if err != nil {
		g.log.Info("WebSocket connection refused", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	origin := auth.OriginFromRequest(r)

	server := websocket.Server{
		// Origin was checked against the allowed set above, websocket's own
		// check would also refuse clients that send none.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			g.serve(conn, identity, origin)
		},
	}
	server.ServeHTTP(w, r)
}

func (g *Gateway) serve(conn *websocket.Conn, identity domain.Identity, origin domain.Origin) {
	conn.MaxPayloadBytes = g.limits.MaxFrameBytes
	out := sink.NewConnectionSink(g.limits.BufferSize, g.log, g.monitoring)
	c := runtime.NewConnection(identity, origin, out)
	g.registry.Register(c)
	g.log.Debug("Connection opened", "connection_id", c.ID, "participant_id", c.ParticipantID())

	ctx, cancel := context.WithCancel(context.WithoutCancel(conn.Request().Context()))
	written := make(chan struct{})
	go func() {
		defer close(written)
		g.write(conn, out)
	}()

	defer func() {
		g.reconciler.Disconnect(ctx, c)
		out.Close()
		<-written
		cancel()
		_ = conn.Close()
		g.log.Debug("Connection closed", "connection_id", c.ID)
	}()

	g.read(ctx, conn, c, out)
}

func (g *Gateway) read(ctx context.Context, conn *websocket.Conn, c *runtime.Connection, out *sink.ConnectionSink) {
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var data []byte
		err := websocket.Message.Receive(conn, &data)
		if stderrors.Is(err, websocket.ErrFrameTooLarge) {
			_ = out.Consume(ctx, ErrorEvent("", fmt.Errorf("%w: frame too large", errors.ErrInvalidPayload)))
			continue
		}
		if err != nil {
			if !stderrors.Is(err, io.EOF) {
				g.log.Debug("WebSocket read failed", "connection_id", c.ID, "error", err)
			}
			return
		}
		g.monitoring.IncrFramesReceived()

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > g.limits.MaxFramesPerSecond {
			g.log.Warn("Frame rate exceeded, closing connection", "connection_id", c.ID, "participant_id", c.ParticipantID())
			_ = out.Consume(ctx, ErrorEvent("", errors.ErrRateLimited))
			return
		}

		frame, err := ParseFrame(data)
		var cmd domain.Command
		if err == nil {
			cmd, err = frame.Command()
		}
		if err != nil {
			_ = out.Consume(ctx, ErrorEvent(frame.RequestID, err))
			if errors.Is(err, errors.ErrUnknownCommand) {
				continue
			}
			decodeErrors++
			if decodeErrors >= g.limits.MaxDecodeErrors {
				g.log.Info("Too many malformed frames, closing connection", "connection_id", c.ID)
				return
			}
			continue
		}
		decodeErrors = 0

		if err = g.dispatcher.Handle(ctx, c, cmd); err != nil {
			_ = out.Consume(ctx, ErrorEvent(frame.RequestID, err))
		}
	}
}

// write is the only goroutine writing to the socket. Once the sink is closed
// it flushes what is already buffered and returns.
func (g *Gateway) write(conn *websocket.Conn, out *sink.ConnectionSink) {
	for {
		select {
		case e := <-out.Events:
			if !g.send(conn, e) {
				return
			}
		case <-out.Done():
			for {
				select {
				case e := <-out.Events:
					if !g.send(conn, e) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (g *Gateway) send(conn *websocket.Conn, e event.Event) bool {
	frame, err := Encode(e)
	if err != nil {
		g.log.Error("Cannot encode event", "event", e.Name, "error", err)
		return true
	}
	if g.limits.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(g.limits.WriteTimeout))
	}
	if err = websocket.JSON.Send(conn, frame); err != nil {
		g.log.Debug("WebSocket write failed", "event", e.Name, "error", err)
		return false
	}
	return true
}
