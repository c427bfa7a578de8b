// Package client is a small WebSocket client for the sanctuary gateway.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sanctuary/domain/event"
	"sanctuary/infrastructure/ws"

	"golang.org/x/net/websocket"
)

type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	nextID atomic.Uint64
}

// Dial opens a connection on {baseURL}/ws. An empty token connects anonymously.
func Dial(baseURL, token string) (*Client, error) {
	base := strings.TrimSuffix(baseURL, "/")
	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	cfg, err := websocket.NewConfig(wsURL, base)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	if token != "" {
		cfg.Header = make(http.Header)
		cfg.Header.Set("Authorization", "Bearer "+token)
	}
	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes one frame and returns its request id.
func (c *Client) Send(frameType string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	requestID := "req-" + strconv.FormatUint(c.nextID.Add(1), 10)
	c.mu.Lock()
	defer c.mu.Unlock()
	return requestID, websocket.JSON.Send(c.conn, ws.Frame{Type: frameType, RequestID: requestID, Payload: data})
}

// SendRaw writes bytes as is, whatever they contain.
func (c *Client) SendRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.Message.Send(c.conn, string(data))
}

// Receive waits for the next frame.
func (c *Client) Receive(timeout time.Duration) (ws.Frame, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	var frame ws.Frame
	err := websocket.JSON.Receive(c.conn, &frame)
	return frame, err
}

// Expect skips frames until one of the given type arrives.
func (c *Client) Expect(name event.Name, timeout time.Duration) (ws.Frame, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ws.Frame{}, fmt.Errorf("no %s frame within %s", name, timeout)
		}
		frame, err := c.Receive(remaining)
		if err != nil {
			return ws.Frame{}, err
		}
		if frame.Type == string(name) {
			return frame, nil
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Decode unmarshals a frame payload.
func Decode[T any](frame ws.Frame) (T, error) {
	var v T
	err := json.Unmarshal(frame.Payload, &v)
	return v, err
}
