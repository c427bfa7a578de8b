package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sanctuary/client"
	"sanctuary/domain"
	"sanctuary/domain/event"
	grpcclient "sanctuary/infrastructure/grpc/client"
	"sanctuary/infrastructure/ws"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the tester application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the tester-side environment variables.
type Config struct {
	BaseURL     string `env:"SANCTUARY_URL,default=http://localhost:8080"`
	GRPCAddress string `env:"SANCTUARY_GRPC_ADDR,default=localhost:9090"`
	Token       string `env:"SANCTUARY_TOKEN"`
	SessionID   string `env:"CHAT_SESSION_ID,default=lobby"`
	Message     string `env:"CHAT_MESSAGE"`
	CreateTopic string `env:"CREATE_SANCTUARY_TOPIC"`
	LogLevel    string `env:"LOG_LEVEL,required=true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tester error: %v\n", err)
	}
	os.Exit(code)
}

// run joins a chat session, optionally posts a message, then prints every
// frame received until Ctrl+C or the server closes the connection.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.CreateTopic != "" {
		if err := createSanctuary(ctx, config); err != nil {
			return exitRuntime, err
		}
	}

	c, err := client.Dial(config.BaseURL, config.Token)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if _, err := c.Send("join_chat", domain.JoinChat{SessionID: config.SessionID}); err != nil {
		return exitRuntime, fmt.Errorf("join failed: %w", err)
	}
	if config.Message != "" {
		if _, err := c.Send("send_message", domain.SendMessage{SessionID: config.SessionID, Content: config.Message}); err != nil {
			return exitRuntime, fmt.Errorf("send failed: %w", err)
		}
	}
	log.Info(fmt.Sprintf(">>> Connected to %s, session %s (Ctrl+C to quit)", config.BaseURL, config.SessionID))

	for {
		frame, err := c.Receive(time.Minute)
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return exitRuntime, fmt.Errorf("connection error: %w", err)
		}
		render(frame)
	}
}

func render(frame ws.Frame) {
	switch event.Name(frame.Type) {
	case event.NewMessage:
		if msg, err := client.Decode[event.ChatMessage](frame); err == nil {
			color.Cyan.Printf("[%s] %s: %s\n", msg.Timestamp.Format(time.TimeOnly), msg.Alias, msg.Content)
			return
		}
	case event.Error, event.ChatError:
		color.Red.Printf("%s %s\n", frame.Type, frame.Payload)
		return
	}
	color.Gray.Printf("%s %s\n", frame.Type, frame.Payload)
}

// createSanctuary creates a sanctuary over gRPC with the tester's bearer and
// prints the host token and recovery link.
func createSanctuary(ctx context.Context, config Config) error {
	hosts, err := grpcclient.Dial(config.GRPCAddress, config.Token)
	if err != nil {
		return err
	}
	defer func() { _ = hosts.Close() }()

	created, err := hosts.CreateSanctuary(ctx, config.CreateTopic, "", "", 24*time.Hour)
	if err != nil {
		return fmt.Errorf("create sanctuary failed: %w", err)
	}
	link, err := hosts.RecoveryLink(ctx, created.Sanctuary.ID, created.HostToken)
	if err != nil {
		return fmt.Errorf("recovery link failed: %w", err)
	}
	color.Green.Printf("sanctuary %s created, expires %s\n", created.Sanctuary.ID, created.Sanctuary.ExpiresAt)
	color.Green.Printf("host token: %s\nrecovery:   %s\n", created.HostToken, link)
	return nil
}
