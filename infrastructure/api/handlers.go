package api

import (
	"encoding/json"
	"net/http"

	"sanctuary/auth"
	"sanctuary/domain"
	"sanctuary/domain/event"
	"sanctuary/errors"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type MessagesResponse struct {
	Messages []event.ChatMessage `json:"messages"`
	Cursor   *string             `json:"cursor,omitempty"`
}

// GetMessages returns one newest-first page of a chat room history.
func (h *Handlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	messages, next, err := h.chat.GetMessages(sessionID, cursor)
	if err != nil {
		h.fail(w, "get_messages", err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesResponse{
		Messages: lo.Map(messages, func(m domain.ChatMessage, _ int) event.ChatMessage {
			return event.ChatMessage{
				ID:         m.ID.String(),
				SessionID:  m.SessionID,
				SenderID:   m.SenderID,
				Alias:      m.Alias,
				Content:    m.Content,
				Type:       m.Type,
				Attachment: m.Attachment,
				Timestamp:  m.CreatedAt,
			}
		}),
		Cursor: next,
	})
}

// RevokeHostSession deactivates a host token. The next lookup of it fails.
func (h *Handlers) RevokeHostSession(w http.ResponseWriter, r *http.Request) {
	if h.adminKeyHash == "" {
		http.Error(w, "administration disabled", http.StatusServiceUnavailable)
		return
	}
	ok, err := auth.CompareSecret(r.Header.Get(AdminKeyHeader), h.adminKeyHash)
	if err != nil || !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	token := mux.Vars(r)["token"]
	if err = h.host.Revoke(token); err != nil {
		h.fail(w, "revoke_host_session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.monitoring.GetLatest())
}

func (h *Handlers) fail(w http.ResponseWriter, operation string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "operation", operation, "error", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, errors.PublicMessage(err), status)
}

func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.CodeForbidden:
		return http.StatusForbidden
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeSessionExpired:
		return http.StatusGone
	case errors.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.CodeResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
