package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"sanctuary/observability"
	"sanctuary/services"

	"github.com/gorilla/mux"
)

// AdminKeyHeader carries the administrative key checked against ADMIN_KEY_HASH.
const AdminKeyHeader = "X-Admin-Key"

type Handlers struct {
	log          *slog.Logger
	chat         services.IChatService
	host         services.IHostService
	monitoring   *observability.Monitoring
	adminKeyHash string
}

func NewHandlers(log *slog.Logger, chat services.IChatService, host services.IHostService,
	monitoring *observability.Monitoring, adminKeyHash string) *Handlers {
	return &Handlers{log: log, chat: chat, host: host, monitoring: monitoring, adminKeyHash: adminKeyHash}
}

// NewRouter mounts the WebSocket gateway next to the plain HTTP endpoints.
func NewRouter(gateway http.Handler, h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/up", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	r.Handle("/ws", gateway).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/{sessionId}/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/admin/host-sessions/{token}/revoke", h.RevokeHostSession).Methods(http.MethodPost)
	r.HandleFunc("/debug/stats", h.Stats).Methods(http.MethodGet)
	return r
}
