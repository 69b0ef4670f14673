package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fanclubkz/consultant/internal/domain"
)

type fakePersister struct {
	clubs []*domain.ClubRecord
	err   error
}

func (f *fakePersister) CreateClub(_ context.Context, club *domain.ClubRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.clubs = append(f.clubs, club)
	return "club-1", nil
}

func newTestWorkflow(persister ClubPersister) (*Workflow, *MemoryStore) {
	store := NewMemoryStore(time.Hour)
	return New(store, persister), store
}

const longDescription = "Клуб для всех, кто любит шахматы: разбор партий, турниры по выходным, " +
	"совместные тренировки и дружеские встречи для игроков любого уровня подготовки."

func advance(t *testing.T, w *Workflow, token, msg string) StepResult {
	t.Helper()
	res, err := w.Advance(context.Background(), token, msg, "user-1")
	if err != nil {
		t.Fatalf("Advance(%q) failed: %v", msg, err)
	}
	return res
}

func TestFullCreationFlow(t *testing.T) {
	t.Parallel()

	persister := &fakePersister{}
	w, store := newTestWorkflow(persister)

	res := w.Start("tok")
	if res.Step != domain.StepName {
		t.Fatalf("expected first step %s, got %s", domain.StepName, res.Step)
	}

	res = advance(t, w, "tok", "Шахматный клуб")
	if res.Step != domain.StepDescription {
		t.Fatalf("expected %s, got %s", domain.StepDescription, res.Step)
	}

	res = advance(t, w, "tok", longDescription)
	if res.Step != domain.StepCategory {
		t.Fatalf("expected %s, got %s", domain.StepCategory, res.Step)
	}

	advance(t, w, "tok", "Хобби")
	advance(t, w, "tok", "Алматы")
	advance(t, w, "tok", "chess@example.kz")
	advance(t, w, "tok", "нет")
	res = advance(t, w, "tok", "нет")

	if !res.Completed {
		t.Fatalf("expected completion, got %+v", res)
	}
	if res.ClubID != "club-1" {
		t.Fatalf("expected club id, got %q", res.ClubID)
	}
	if len(persister.clubs) != 1 {
		t.Fatalf("expected one persisted club, got %d", len(persister.clubs))
	}

	club := persister.clubs[0]
	if club.Phone != domain.PlaceholderPhone {
		t.Fatalf("expected placeholder phone, got %q", club.Phone)
	}
	if club.Address != domain.PlaceholderAddress {
		t.Fatalf("expected placeholder address, got %q", club.Address)
	}
	if club.Activities != domain.DefaultActivities || club.Tags != domain.DefaultTags {
		t.Fatalf("expected defaults filled, got %+v", club)
	}

	if store.Len() != 0 {
		t.Fatalf("expected state evicted after completion, got %d live states", store.Len())
	}
}

func TestShortDescriptionKeepsStep(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkflow(&fakePersister{})
	w.Start("tok")
	advance(t, w, "tok", "Клуб")

	res := advance(t, w, "tok", "слишком коротко")
	if res.Step != domain.StepDescription {
		t.Fatalf("expected to stay at description, got %s", res.Step)
	}
	if !strings.Contains(res.Message, "100") {
		t.Fatalf("expected message to mention the minimum length: %q", res.Message)
	}
}

func TestEmailRequiresAtSign(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkflow(&fakePersister{})
	w.Start("tok")
	advance(t, w, "tok", "Клуб")
	advance(t, w, "tok", longDescription)
	advance(t, w, "tok", "Спорт")
	advance(t, w, "tok", "Астана")

	res := advance(t, w, "tok", "not-an-email")
	if res.Step != domain.StepEmail {
		t.Fatalf("expected to stay at email, got %s", res.Step)
	}

	res = advance(t, w, "tok", "club@example.kz")
	if res.Step != domain.StepPhone {
		t.Fatalf("expected phone step after valid email, got %s", res.Step)
	}
}

func TestCancelEvictsState(t *testing.T) {
	t.Parallel()

	w, store := newTestWorkflow(&fakePersister{})
	w.Start("tok")

	res := advance(t, w, "tok", "отмена")
	if !res.Canceled {
		t.Fatalf("expected cancellation, got %+v", res)
	}
	if store.Len() != 0 {
		t.Fatal("expected state evicted after cancel")
	}

	if _, err := w.Advance(context.Background(), "tok", "Клуб", "user-1"); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation after cancel, got %v", err)
	}
}

func TestHelpDoesNotAdvance(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkflow(&fakePersister{})
	w.Start("tok")

	res := advance(t, w, "tok", "помощь")
	if res.Step != domain.StepName {
		t.Fatalf("expected to stay at name step, got %s", res.Step)
	}
	if res.Message == "" {
		t.Fatal("expected a hint message")
	}
}

func TestPersistenceFailureEvictsState(t *testing.T) {
	t.Parallel()

	w, store := newTestWorkflow(&fakePersister{err: errors.New("db down")})
	w.Start("tok")
	advance(t, w, "tok", "Клуб")
	advance(t, w, "tok", longDescription)
	advance(t, w, "tok", "Спорт")
	advance(t, w, "tok", "Алматы")
	advance(t, w, "tok", "club@example.kz")
	advance(t, w, "tok", "нет")

	res := advance(t, w, "tok", "нет")
	if res.Completed {
		t.Fatal("expected completion to fail")
	}
	if store.Len() != 0 {
		t.Fatal("expected state evicted after persistence failure")
	}

	if _, err := w.Advance(context.Background(), "tok", "ещё раз", "user-1"); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation on replay, got %v", err)
	}
}

func TestUnknownTokenErrors(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorkflow(&fakePersister{})
	if _, err := w.Advance(context.Background(), "ghost", "привет", "user-1"); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation, got %v", err)
	}
}
