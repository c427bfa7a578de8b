package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"sanctuary/observability"

	"github.com/shirou/gopsutil/process"
)

// RegistryCounter reports live connections and rooms per kind.
type RegistryCounter interface {
	Counts() (int, map[string]int)
}

// HealthMonitoringWorker samples the process and registry sizes every interval
// and hands them to the telemetry pipeline. Samples may be lost when the
// pipeline is busy, the next tick supersedes them.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	registry       RegistryCounter
	telemetryChan  chan<- observability.TechnicalEvent
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(
	log *slog.Logger,
	registry RegistryCounter,
	telemetryChan chan<- observability.TechnicalEvent,
	metricInterval time.Duration,
) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		registry:       registry,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping technicalEvent send")
			return nil
		case <-ticker.C:
			connections, rooms := w.registry.Counts()
			w.send(ctx, observability.TechnicalEvent{
				Type:      observability.RegistrySizeType,
				CreatedAt: time.Now().UTC(),
				Payload:   observability.RegistrySize{Connections: connections, Rooms: rooms},
			})
			sample, err := sampleProcess(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.send(ctx, observability.TechnicalEvent{
				Type:      observability.ProcessHealthType,
				CreatedAt: time.Now().UTC(),
				Payload:   sample,
			})
		}
	}
}

func (w *HealthMonitoringWorker) send(ctx context.Context, e observability.TechnicalEvent) {
	select {
	case <-ctx.Done():
	case w.telemetryChan <- e:
	default:
		w.log.Debug("Observability telemetry event lost", "type", e.Type)
	}
}

func sampleProcess(p *process.Process) (observability.ProcessSample, error) {
	mem, err := p.MemoryInfo()
	if err != nil {
		return observability.ProcessSample{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return observability.ProcessSample{}, err
	}
	status, err := p.Status()
	if err != nil {
		return observability.ProcessSample{}, err
	}
	return observability.ProcessSample{
		PID:    p.Pid,
		Status: status,
		CPU:    cpu,
		RSS:    mem.RSS,
	}, nil
}
