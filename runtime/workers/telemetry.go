package workers

import (
	"context"
	"log/slog"

	"sanctuary/observability"
)

// TelemetryWorker fans technical events out to every handler.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan <-chan observability.TechnicalEvent
	handlers      []observability.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	telemetryChan <-chan observability.TechnicalEvent,
	handlers ...observability.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:           log,
		telemetryChan: telemetryChan,
		handlers:      handlers,
	}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-w.telemetryChan:
			for _, h := range w.handlers {
				h.Handle(evt)
			}
		}
	}
}
