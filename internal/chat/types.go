// Package chat exposes the conversational assistant over HTTP and
// WebSocket and orchestrates one chat turn end to end.
package chat

import "errors"

// Validation errors surfaced to the transport layer.
var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message is too long")
)

// Request is the chat request body shared by the HTTP and WS channels.
type Request struct {
	Message           string `json:"message"`
	ConversationToken string `json:"conversation_token,omitempty"`
}

// Response is the chat response body. ConversationToken is present
// while a club creation flow is active; Stage and Progress accompany
// it so clients can show flow progress.
type Response struct {
	Message           string `json:"message"`
	ConversationToken string `json:"conversation_token,omitempty"`
	Agent             string `json:"agent,omitempty"`
	Intent            string `json:"intent,omitempty"`
	Stage             string `json:"stage,omitempty"`
	Progress          int    `json:"progress,omitempty"`
}
