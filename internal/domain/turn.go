package domain

import "time"

// ChatTurn is one audit record of the assistant pipeline: which agent
// handled a message and what action was taken.
type ChatTurn struct {
	ID        int64
	UserID    string
	SessionID string
	AgentName string
	Action    string
	Details   string
	CreatedAt time.Time
}

// Audit actions recorded per chat turn.
const (
	ActionWorkflowStart    = "workflow_start"
	ActionWorkflowStep     = "workflow_step"
	ActionWorkflowComplete = "workflow_complete"
	ActionWorkflowCancel   = "workflow_cancel"
	ActionWorkflowError    = "workflow_error"
	ActionChatReply        = "chat_reply"
	ActionChatFallback     = "chat_fallback"
)
