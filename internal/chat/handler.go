package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fanclubkz/consultant/internal/api"
	"github.com/fanclubkz/consultant/internal/identity"
	"github.com/fanclubkz/consultant/internal/workflow"
)

// maxRequestBodySize bounds the chat request body (64KB is far beyond
// any valid message).
const maxRequestBodySize = 64 << 10

// Handler serves the chat endpoint over HTTP.
type Handler struct {
	svc         *Service
	rateLimiter *RateLimiter
	enabled     bool
}

// NewHandler creates the chat HTTP handler. enabled=false turns every
// chat request into a 503 without touching the pipeline.
func NewHandler(svc *Service, rateLimiter *RateLimiter, enabled bool) *Handler {
	return &Handler{svc: svc, rateLimiter: rateLimiter, enabled: enabled}
}

// HandleChat handles POST /api/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		api.Error(w, http.StatusServiceUnavailable, "assistant is disabled")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.rateLimiter.Allow(userID) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("chat request",
		"user_id", userID,
		"session_id", sessionID,
		"has_token", req.ConversationToken != "",
		"message_length", len(req.Message),
	)

	resp, err := h.svc.HandleTurn(r.Context(), TurnInput{
		Message:   req.Message,
		Token:     req.ConversationToken,
		UserID:    userID,
		SessionID: sessionID,
		Channel:   "chat_http",
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		api.Error(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, ErrMessageTooLong):
		api.Error(w, http.StatusBadRequest, "message is too long")
	case errors.Is(err, workflow.ErrUnknownConversation):
		api.Error(w, http.StatusNotFound, "unknown conversation")
	default:
		slog.Error("chat turn failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// RegisterRoutes registers the chat endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.HandleChat)
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
	if h.svc != nil {
		h.svc.Close()
	}
}
