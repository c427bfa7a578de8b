package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"sanctuary/observability"

	"github.com/stretchr/testify/require"
)

type fixedRegistry struct{}

func (fixedRegistry) Counts() (int, map[string]int) {
	return 3, map[string]int{"chat": 1, "audio": 2}
}

func TestHealthMonitoring_FeedsMonitoringThroughTelemetry(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)
	monitoring := observability.NewMonitoring(log)
	telemetry := make(chan observability.TechnicalEvent, 16)

	health := NewHealthMonitoringWorker(log, fixedRegistry{}, telemetry, 20*time.Millisecond)
	pipeline := NewTelemetryWorker(log, telemetry,
		observability.NewProcessHealthHandler(log, monitoring),
		observability.NewRegistrySizeHandler(log, monitoring, 0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = health.Run(ctx) }()
	go func() { _ = pipeline.Run(ctx) }()

	// Then registry counts and a process sample show up in the snapshot
	req.Eventually(func() bool {
		stats := monitoring.GetLatest()
		return stats.Connections == 3 && stats.Process.PID != 0
	}, 2*time.Second, 20*time.Millisecond)
	req.Equal(2, monitoring.GetLatest().Rooms["audio"])
}
