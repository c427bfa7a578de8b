package observability

import (
	"fmt"
	"log/slog"
	"time"

	"sanctuary/errors"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ProcessHealthType       Type = "PROCESS_HEALTH"
	RegistrySizeType        Type = "REGISTRY_SIZE"
)

// TechnicalEvent travels from background workers to the telemetry handlers.
type TechnicalEvent struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type RegistrySize struct {
	Connections int
	Rooms       map[string]int
}

// Handler Each kind of event has his own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(event TechnicalEvent)
}

// WorkerRestartedAfterPanicHandler counts supervisor restarts.
type WorkerRestartedAfterPanicHandler struct {
	log        *slog.Logger
	monitoring *Monitoring
}

func NewWorkerRestartedAfterPanicHandler(log *slog.Logger, monitoring *Monitoring) WorkerRestartedAfterPanicHandler {
	return WorkerRestartedAfterPanicHandler{log: log, monitoring: monitoring}
}

func (h WorkerRestartedAfterPanicHandler) Handle(event TechnicalEvent) {
	if event.Type != RestartedAfterPanicType {
		return
	}
	payload, ok := event.Payload.(WorkerRestartedAfterPanic)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.monitoring.IncrWorkerRestarts()
	h.log.Debug(fmt.Sprintf("Worker %s restarted after panic, total: %d",
		payload.WorkerName, h.monitoring.GetLatest().WorkerRestarts))
}

// ProcessHealthHandler stores process samples.
type ProcessHealthHandler struct {
	log        *slog.Logger
	monitoring *Monitoring
}

func NewProcessHealthHandler(log *slog.Logger, monitoring *Monitoring) ProcessHealthHandler {
	return ProcessHealthHandler{log: log, monitoring: monitoring}
}

func (h ProcessHealthHandler) Handle(event TechnicalEvent) {
	if event.Type != ProcessHealthType {
		return
	}
	payload, ok := event.Payload.(ProcessSample)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.monitoring.UpdateProcess(payload)
}

// RegistrySizeHandler stores registry counts and warns when connections pile up.
type RegistrySizeHandler struct {
	log           *slog.Logger
	monitoring    *Monitoring
	warnThreshold int
}

func NewRegistrySizeHandler(log *slog.Logger, monitoring *Monitoring, warnThreshold int) RegistrySizeHandler {
	return RegistrySizeHandler{log: log, monitoring: monitoring, warnThreshold: warnThreshold}
}

func (h RegistrySizeHandler) Handle(event TechnicalEvent) {
	if event.Type != RegistrySizeType {
		return
	}
	payload, ok := event.Payload.(RegistrySize)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.monitoring.UpdateRegistry(payload.Connections, payload.Rooms)
	if h.warnThreshold > 0 && payload.Connections >= h.warnThreshold {
		h.log.Warn("High number of live connections", "connections", payload.Connections)
	}
}
