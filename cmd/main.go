package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/infrastructure/api"
	"sanctuary/infrastructure/grpc/hostv1"
	"sanctuary/infrastructure/grpc/server"
	"sanctuary/infrastructure/ws"
	"sanctuary/internal"
	"sanctuary/observability"
	"sanctuary/repositories"
	"sanctuary/runtime"
	"sanctuary/runtime/workers"
	"sanctuary/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sanctuary terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups run before the exit code reaches main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugInspectPort, endpoint))
		database.StartDebugServer(db, config.DebugInspectPort, endpoint, SanctuaryMapper)
	}

	// 3. Repositories & Services
	monitoring := observability.NewMonitoring(logger)
	registry := runtime.NewRegistry(logger)
	sessionRepository := repositories.NewHostSessionRepository(db, logger)
	sanctuaryRepository := repositories.NewSanctuaryRepository(db, logger)
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)

	hostService := services.NewHostService(logger, sessionRepository, sanctuaryRepository, config.PublicBaseURL)
	submissionService := services.NewSubmissionService(logger, sanctuaryRepository, registry, monitoring)
	chatService := services.NewChatService(logger, registry, messageRepository, monitoring)
	dispatcher := services.NewDispatcher(logger,
		chatService,
		services.NewSanctuaryService(logger, registry, sanctuaryRepository, hostService, submissionService, monitoring),
		services.NewAudioService(logger, registry),
		services.NewModerationRouter(logger, registry, monitoring),
	)
	reconciler := services.NewReconciler(logger, registry)
	tokens := auth.NewTokenManager(config.JWTSecret, config.JWTIssuer)

	// 4. Supervision & Telemetry
	telemetryChan := make(chan observability.TechnicalEvent, config.TelemetryBuffer)
	sup := workers.NewSupervisor(logger, config.RestartInterval).WithTelemetry(telemetryChan)
	sup.Add(
		workers.NewHealthMonitoringWorker(logger, registry, telemetryChan, config.MetricInterval),
		workers.NewTelemetryWorker(logger, telemetryChan,
			observability.NewWorkerRestartedAfterPanicHandler(logger, monitoring),
			observability.NewProcessHealthHandler(logger, monitoring),
			observability.NewRegistrySizeHandler(logger, monitoring, config.RoomSizeWarning),
		),
	)
	supervised := make(chan struct{})
	go func() {
		defer close(supervised)
		sup.Run(ctx)
	}()

	errChan := make(chan error, 2)

	// 5. HTTP Server (WebSocket gateway, history, admin, stats)
	gateway := ws.NewGateway(logger, auth.NewGateway(tokens, logger), registry, dispatcher, reconciler, monitoring, config.Limits()).
		WithAllowedOrigins(config.PublicBaseURL)
	handlers := api.NewHandlers(logger, chatService, hostService, monitoring, config.AdminKeyHash)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           api.NewRouter(gateway, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. gRPC Server (collaborator HostService)
	address := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			sdkgrpc.UnaryLoggingInterceptor(logger),
			auth.IdentityInterceptor(tokens),
		))
	hostv1.RegisterHostServiceServer(s, server.NewHostServer(logger, hostService))
	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	s.GracefulStop()
	stop()
	sup.Stop()
	<-supervised
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG).WithBypassLockGuard(true)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// SanctuaryMapper renders host sessions and sanctuaries in the debug inspector.
// Token hashes are shortened to their prefix.
func SanctuaryMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	switch {
	case strings.HasPrefix(key, "host:"):
		var session domain.HostSession
		if err := json.Unmarshal(val, &session); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "HOST"
		row.Detail = fmt.Sprintf("%s sanctuary=%s owner=%s usable=%t",
			session.TokenPrefix(), session.SanctuaryID, session.OwnerID, session.IsUsable(time.Now()))
	case strings.HasPrefix(key, "host_owner:"):
		row.Type = "HOST_OWNER"
		row.Detail = domain.TokenPrefix(string(val))
	case strings.HasPrefix(key, "sanctuary:"):
		var sanctuary domain.Sanctuary
		if err := json.Unmarshal(val, &sanctuary); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "SANCTUARY"
		row.Detail = fmt.Sprintf("%s (%d submissions, live=%t)",
			sanctuary.Topic, sanctuary.SubmissionCount, sanctuary.IsLive(time.Now()))
	case strings.HasPrefix(key, "submission:"):
		row.Type = "SUBMISSION"
	case strings.HasPrefix(key, "msg:"):
		row.Type = "CHAT"
	}
	return row
}
