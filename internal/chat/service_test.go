package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fanclubkz/consultant/internal/agents"
	"github.com/fanclubkz/consultant/internal/completion"
	"github.com/fanclubkz/consultant/internal/domain"
	"github.com/fanclubkz/consultant/internal/intent"
	"github.com/fanclubkz/consultant/internal/rag"
	"github.com/fanclubkz/consultant/internal/store"
	"github.com/fanclubkz/consultant/internal/workflow"
)

// memRepo is an in-memory store.Repository for pipeline tests.
type memRepo struct {
	mu    sync.Mutex
	clubs []*domain.ClubRecord
	turns []*domain.ChatTurn
	fail  bool
}

func (m *memRepo) CreateClub(_ context.Context, club *domain.ClubRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("db down")
	}
	club.ID = "club-test"
	m.clubs = append(m.clubs, club)
	return club.ID, nil
}

func (m *memRepo) GetClub(context.Context, string) (*domain.ClubRecord, error) { return nil, nil }

func (m *memRepo) SearchClubs(context.Context, store.SearchFilter) ([]*domain.ClubRecord, error) {
	return nil, nil
}

func (m *memRepo) AppendTurn(_ context.Context, turn *domain.ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	return nil
}

func (m *memRepo) RecentTurns(context.Context, int) ([]*domain.ChatTurn, error) { return nil, nil }
func (m *memRepo) Ping(context.Context) error                                  { return nil }
func (m *memRepo) Close() error                                                { return nil }

func (m *memRepo) lastTurn() *domain.ChatTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.turns) == 0 {
		return nil
	}
	return m.turns[len(m.turns)-1]
}

type fakeCompletion struct {
	reply string
	err   error
}

func (f *fakeCompletion) Complete(context.Context, completion.Request) (string, error) {
	return f.reply, f.err
}

func newTestService(repo *memRepo, client completion.Client) *Service {
	registry := agents.DefaultRegistry()
	flowStore := workflow.NewMemoryStore(time.Hour)
	return NewService(
		intent.NewClassifier(),
		rag.NewAssembler(nil, time.Hour),
		registry,
		agents.NewRouter(registry, client),
		workflow.New(flowStore, repo),
		client,
		repo,
		nil,
		2000,
	)
}

func turnInput(message, token string) TurnInput {
	return TurnInput{Message: message, Token: token, UserID: "user-1", SessionID: "sess-1"}
}

func TestTriggerPhraseStartsWorkflow(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	svc := newTestService(repo, &fakeCompletion{reply: "ответ"})

	resp, err := svc.HandleTurn(context.Background(), turnInput("Хочу создать клуб!", ""))
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if resp.ConversationToken == "" {
		t.Fatal("expected a minted conversation token")
	}
	if resp.Stage != string(domain.StepName) {
		t.Fatalf("expected name stage, got %q", resp.Stage)
	}
	if !strings.Contains(resp.Message, "назыв") {
		t.Fatalf("expected the name question, got %q", resp.Message)
	}
	turn := repo.lastTurn()
	if turn == nil || turn.Action != domain.ActionWorkflowStart {
		t.Fatalf("expected workflow_start audit turn, got %+v", turn)
	}
}

func TestTokenContinuesWorkflow(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	svc := newTestService(repo, &fakeCompletion{reply: "ответ"})
	ctx := context.Background()

	start, err := svc.HandleTurn(ctx, turnInput("создать клуб", ""))
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}

	resp, err := svc.HandleTurn(ctx, turnInput("Шахматный клуб", start.ConversationToken))
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if resp.Stage != string(domain.StepDescription) {
		t.Fatalf("expected description stage, got %q", resp.Stage)
	}
	if resp.ConversationToken != start.ConversationToken {
		t.Fatal("expected the same token while the flow is active")
	}
}

func TestEmptyAndOversizedMessages(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memRepo{}, &fakeCompletion{reply: "ответ"})
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, turnInput("   ", "")); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	long := strings.Repeat("ю", 2001)
	if _, err := svc.HandleTurn(ctx, turnInput(long, "")); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestUnknownTokenSurfacesError(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memRepo{}, &fakeCompletion{reply: "ответ"})
	_, err := svc.HandleTurn(context.Background(), turnInput("привет", "ghost-token"))
	if !errors.Is(err, workflow.ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation, got %v", err)
	}
}

func TestCompletionFailureServesFallback(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	svc := newTestService(repo, &fakeCompletion{err: completion.ErrUnavailable})

	resp, err := svc.HandleTurn(context.Background(), turnInput("расскажи о платформе", ""))
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if resp.Message == "" {
		t.Fatal("expected a non-empty fallback reply")
	}
	// Routing also failed, so the orchestrator owns the turn.
	if resp.Agent != agents.Orchestrator {
		t.Fatalf("expected orchestrator fallback, got %q", resp.Agent)
	}
	turn := repo.lastTurn()
	if turn == nil || turn.Action != domain.ActionChatFallback {
		t.Fatalf("expected chat_fallback audit turn, got %+v", turn)
	}
	if turn.AgentName != agents.Orchestrator {
		t.Fatalf("expected orchestrator audit agent, got %q", turn.AgentName)
	}
}

func TestFreeFormQuestionIsRoutedAndAnswered(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	client := &fakeCompletion{reply: `{"agent": "support_specialist", "reason": "техника"}`}
	svc := newTestService(repo, client)

	resp, err := svc.HandleTurn(context.Background(), turnInput("не работает сайт, помогите", ""))
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if resp.Agent != agents.SupportSpecialist {
		t.Fatalf("expected support_specialist, got %q", resp.Agent)
	}
	if resp.Intent == "" {
		t.Fatal("expected classified intent in the response")
	}
	if resp.ConversationToken != "" {
		t.Fatal("expected no token for a free-form question")
	}
}

func TestCompletedFlowDropsToken(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	svc := newTestService(repo, &fakeCompletion{reply: "ответ"})
	ctx := context.Background()

	start, _ := svc.HandleTurn(ctx, turnInput("создать клуб", ""))
	token := start.ConversationToken

	answers := []string{
		"Шахматный клуб",
		strings.Repeat("Клуб шахмат: разбор партий, турниры и тренировки каждую неделю. ", 3),
		"Хобби",
		"Алматы",
		"chess@example.kz",
		"нет",
		"нет",
	}
	var resp Response
	var err error
	for _, answer := range answers {
		resp, err = svc.HandleTurn(ctx, turnInput(answer, token))
		if err != nil {
			t.Fatalf("HandleTurn(%q) failed: %v", answer, err)
		}
	}

	if resp.ConversationToken != "" {
		t.Fatal("expected token dropped after completion")
	}
	if !strings.Contains(resp.Message, "club-test") {
		t.Fatalf("expected club id in success message: %q", resp.Message)
	}
	if len(repo.clubs) != 1 {
		t.Fatalf("expected one persisted club, got %d", len(repo.clubs))
	}

	// Replaying the dead token is an explicit error.
	if _, err := svc.HandleTurn(ctx, turnInput("ещё раз", token)); !errors.Is(err, workflow.ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation on replay, got %v", err)
	}
}
