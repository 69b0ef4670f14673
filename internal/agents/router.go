package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fanclubkz/consultant/internal/completion"
)

// FallbackAgent handles every message the router cannot place.
const FallbackAgent = Orchestrator

const routingSystemPrompt = "Ты выбираешь, какой специалист платформы должен ответить пользователю. " +
	"Ответь строго одним JSON-объектом вида {\"agent\": \"имя\", \"reason\": \"почему\"} без пояснений."

// Router picks the agent for a message with a single completion call.
// Routing never fails: any error degrades to the orchestrator.
type Router struct {
	registry *Registry
	client   completion.Client
}

// NewRouter returns a router over the given registry and completion
// client.
func NewRouter(registry *Registry, client completion.Client) *Router {
	return &Router{registry: registry, client: client}
}

type routeDecision struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

// Route returns the name of the agent that should handle the message.
func (r *Router) Route(ctx context.Context, message string) string {
	if r.client == nil {
		return FallbackAgent
	}

	text, err := r.client.Complete(ctx, completion.Request{
		SystemPrompt: routingSystemPrompt,
		UserPrompt:   r.buildPrompt(message),
		Temperature:  0,
	})
	if err != nil {
		slog.Warn("agent routing call failed, using fallback", "error", err)
		return FallbackAgent
	}

	var d routeDecision
	if err := json.Unmarshal([]byte(extractJSON(text)), &d); err != nil {
		slog.Warn("agent routing returned unparseable decision, using fallback", "raw", text)
		return FallbackAgent
	}
	if _, ok := r.registry.Get(d.Agent); !ok {
		slog.Warn("agent routing picked unknown agent, using fallback", "agent", d.Agent)
		return FallbackAgent
	}

	slog.Debug("agent routed", "agent", d.Agent, "reason", d.Reason)
	return d.Agent
}

func (r *Router) buildPrompt(message string) string {
	var sb strings.Builder
	sb.WriteString("Доступные специалисты:\n")
	for _, d := range r.registry.List() {
		fmt.Fprintf(&sb, "- %s: %s\n", d.Name, d.Description)
	}
	fmt.Fprintf(&sb, "\nСообщение пользователя: %s", message)
	return sb.String()
}

// extractJSON pulls the first JSON object out of a completion that may
// wrap it in markdown fences or prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
