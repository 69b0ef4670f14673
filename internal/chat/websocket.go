package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fanclubkz/consultant/internal/identity"
	"github.com/fanclubkz/consultant/internal/workflow"
)

// WSHandler serves the chat widget's WebSocket channel. It carries the
// same request/response JSON as the POST endpoint, one exchange per
// message.
type WSHandler struct {
	svc         *Service
	rateLimiter *RateLimiter
	enabled     bool
}

// NewWSHandler creates the WebSocket chat handler.
func NewWSHandler(svc *Service, rateLimiter *RateLimiter, enabled bool) *WSHandler {
	return &WSHandler{svc: svc, rateLimiter: rateLimiter, enabled: enabled}
}

type wsError struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("chat websocket connect", "user_id", userID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.enabled {
		http.Error(w, `{"error":"assistant is disabled"}`, http.StatusServiceUnavailable)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept chat websocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("failed to close chat websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx := r.Context()
	for {
		var req Request
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				slog.Debug("chat websocket read failed", "error", err, "user_id", userID)
			}
			return
		}

		if !h.rateLimiter.Allow(userID) {
			if err := wsjson.Write(ctx, ws, wsError{Error: "rate limit exceeded"}); err != nil {
				return
			}
			continue
		}

		resp, err := h.svc.HandleTurn(ctx, TurnInput{
			Message:   req.Message,
			Token:     req.ConversationToken,
			UserID:    userID,
			SessionID: sessionID,
			Channel:   "chat_ws",
		})
		if err != nil {
			if writeErr := wsjson.Write(ctx, ws, wsError{Error: wsErrorText(err)}); writeErr != nil {
				return
			}
			continue
		}

		if err := wsjson.Write(ctx, ws, resp); err != nil {
			slog.Debug("chat websocket write failed", "error", err, "user_id", userID)
			return
		}
	}
}

func wsErrorText(err error) string {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return "message is required"
	case errors.Is(err, ErrMessageTooLong):
		return "message is too long"
	case errors.Is(err, workflow.ErrUnknownConversation):
		return "unknown conversation"
	default:
		return "internal error"
	}
}
