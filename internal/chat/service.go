package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fanclubkz/consultant/internal/agents"
	"github.com/fanclubkz/consultant/internal/completion"
	"github.com/fanclubkz/consultant/internal/domain"
	"github.com/fanclubkz/consultant/internal/intent"
	"github.com/fanclubkz/consultant/internal/rag"
	"github.com/fanclubkz/consultant/internal/store"
	"github.com/fanclubkz/consultant/internal/workflow"
)

// creationTriggers start the club creation flow when the message
// contains one of them.
var creationTriggers = []string{
	"создать клуб",
	"создать фан-клуб",
	"хочу создать",
	"сделать клуб",
	"создание клуба",
}

// generationTemperature is used for answer generation; routing always
// runs at temperature 0.
const generationTemperature = 0.7

// fallbackReplies are served when the completion provider is down or
// disabled, keyed by agent.
var fallbackReplies = map[string]string{
	agents.Orchestrator: "Я на связи, но сейчас отвечаю в упрощённом режиме. " +
		"Могу помочь создать клуб: напишите «создать клуб». " +
		"Найти клубы можно в каталоге на fan-club.kz.",
	agents.ClubSpecialist: "Сейчас я могу помочь только с пошаговым созданием клуба: " +
		"напишите «создать клуб», и мы начнём.",
	agents.SupportSpecialist: "Не получается ответить развёрнуто. " +
		"Проверьте раздел «Помощь» на fan-club.kz или напишите в поддержку.",
	agents.MentorSpecialist: "Сейчас отвечаю в упрощённом режиме. " +
		"Посмотрите каталог клубов по интересам на fan-club.kz.",
}

// TurnInput is one inbound message with its identity context.
type TurnInput struct {
	Message   string
	Token     string
	UserID    string
	SessionID string
	Channel   string
}

// Service orchestrates one chat turn: workflow continuation, creation
// triggers, or classify-route-assemble-generate.
type Service struct {
	classifier  *intent.Classifier
	assembler   *rag.Assembler
	registry    *agents.Registry
	router      *agents.Router
	flow        *workflow.Workflow
	completions completion.Client
	repo        store.Repository
	log         ConversationLogger
	maxLen      int
}

// NewService wires the chat pipeline. completions may be nil; the
// service then serves fallback replies for free-form questions.
func NewService(
	classifier *intent.Classifier,
	assembler *rag.Assembler,
	registry *agents.Registry,
	router *agents.Router,
	flow *workflow.Workflow,
	completions completion.Client,
	repo store.Repository,
	log ConversationLogger,
	maxLen int,
) *Service {
	if log == nil {
		log = noopConversationLogger{}
	}
	return &Service{
		classifier:  classifier,
		assembler:   assembler,
		registry:    registry,
		router:      router,
		flow:        flow,
		completions: completions,
		repo:        repo,
		log:         log,
		maxLen:      maxLen,
	}
}

// HandleTurn processes one message and returns the assistant reply.
// Validation failures return ErrEmptyMessage or ErrMessageTooLong;
// replaying a dead token returns workflow.ErrUnknownConversation.
func (s *Service) HandleTurn(ctx context.Context, in TurnInput) (Response, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return Response{}, ErrEmptyMessage
	}
	if len([]rune(message)) > s.maxLen {
		return Response{}, ErrMessageTooLong
	}

	s.logEvent(in, "outbound", "chat_user_message", message, nil)

	var resp Response
	var err error
	switch {
	case in.Token != "":
		resp, err = s.continueWorkflow(ctx, in, message)
	case isCreationTrigger(message):
		resp = s.startWorkflow(ctx, in)
	default:
		resp = s.answer(ctx, in, message)
	}
	if err != nil {
		return Response{}, err
	}

	s.logEvent(in, "inbound", "chat_assistant_message", resp.Message, map[string]any{
		"agent":  resp.Agent,
		"intent": resp.Intent,
		"stage":  resp.Stage,
	})
	return resp, nil
}

func (s *Service) continueWorkflow(ctx context.Context, in TurnInput, message string) (Response, error) {
	res, err := s.flow.Advance(ctx, in.Token, message, in.UserID)
	if err != nil {
		return Response{}, err
	}

	action := domain.ActionWorkflowStep
	details := fmt.Sprintf("step=%s", res.Step)
	switch {
	case res.Completed:
		action = domain.ActionWorkflowComplete
		details = fmt.Sprintf("club_id=%s", res.ClubID)
	case res.Canceled:
		action = domain.ActionWorkflowCancel
		details = ""
	case res.Step == domain.StepDone:
		action = domain.ActionWorkflowError
		details = "persistence failed"
	}
	s.audit(ctx, in, agents.ClubSpecialist, action, details)

	token := in.Token
	if res.Completed || res.Canceled || res.Step == domain.StepDone {
		token = ""
	}
	return Response{
		Message:           res.Message,
		ConversationToken: token,
		Agent:             agents.ClubSpecialist,
		Stage:             string(res.Step),
		Progress:          res.Progress,
	}, nil
}

func (s *Service) startWorkflow(ctx context.Context, in TurnInput) Response {
	token := uuid.NewString()
	res := s.flow.Start(token)
	s.audit(ctx, in, agents.ClubSpecialist, domain.ActionWorkflowStart, "token="+token)
	return Response{
		Message:           res.Message,
		ConversationToken: token,
		Agent:             agents.ClubSpecialist,
		Stage:             string(res.Step),
		Progress:          res.Progress,
	}
}

func (s *Service) answer(ctx context.Context, in TurnInput, message string) Response {
	res := s.classifier.Classify(message)
	agentName := s.router.Route(ctx, message)
	bundle := s.assembler.Assemble(message, agentName, res, nil)

	reply, generated := s.generate(ctx, agentName, bundle, message)
	action := domain.ActionChatReply
	if !generated {
		action = domain.ActionChatFallback
	}
	s.audit(ctx, in, agentName, action,
		fmt.Sprintf("intent=%s confidence=%.2f sources=%s", res.Primary, res.Confidence, strings.Join(bundle.Sources, ",")))

	return Response{Message: reply, Agent: agentName, Intent: res.Primary}
}

// generate calls the completion provider with the agent's persona and
// the assembled context. It reports whether a real completion was
// produced; otherwise the reply is the agent's canned fallback.
func (s *Service) generate(ctx context.Context, agentName string, bundle rag.Bundle, message string) (string, bool) {
	if s.completions == nil {
		return fallbackReply(agentName), false
	}

	desc, ok := s.registry.Get(agentName)
	if !ok {
		desc, _ = s.registry.Get(agents.FallbackAgent)
	}

	reply, err := s.completions.Complete(ctx, completion.Request{
		SystemPrompt: desc.SystemPrompt + "\n\nКОНТЕКСТ:\n" + bundle.Text,
		UserPrompt:   message,
		Temperature:  generationTemperature,
	})
	if err != nil {
		slog.Warn("answer generation failed, serving fallback", "agent", agentName, "error", err)
		return fallbackReply(agentName), false
	}
	return reply, true
}

func fallbackReply(agentName string) string {
	if reply, ok := fallbackReplies[agentName]; ok {
		return reply
	}
	return fallbackReplies[agents.Orchestrator]
}

func isCreationTrigger(message string) bool {
	m := intent.Normalize(message)
	for _, trigger := range creationTriggers {
		if strings.Contains(m, intent.Normalize(trigger)) {
			return true
		}
	}
	return false
}

// audit appends one turn record. Audit failures are logged, never
// surfaced to the user.
func (s *Service) audit(ctx context.Context, in TurnInput, agentName, action, details string) {
	if s.repo == nil {
		return
	}
	turn := &domain.ChatTurn{
		UserID:    in.UserID,
		SessionID: in.SessionID,
		AgentName: agentName,
		Action:    action,
		Details:   store.TrimDetails(details),
		CreatedAt: time.Now(),
	}
	if err := s.repo.AppendTurn(ctx, turn); err != nil {
		slog.Error("failed to append audit turn", "action", action, "error", err)
	}
}

func (s *Service) logEvent(in TurnInput, direction, eventType, content string, meta map[string]any) {
	channel := in.Channel
	if channel == "" {
		channel = "chat_http"
	}
	s.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     in.UserID,
		SessionID:  in.SessionID,
		Channel:    channel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Content:    cleanForReadability(content),
		Meta:       meta,
	})
}

// Close releases service resources.
func (s *Service) Close() {
	if err := s.log.Close(); err != nil {
		slog.Warn("failed to close conversation logger", "error", err)
	}
}
