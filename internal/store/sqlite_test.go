package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fanclubkz/consultant/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "consultant.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleClub(name, category, city string) *domain.ClubRecord {
	return &domain.ClubRecord{
		Name:        name,
		Description: "Описание клуба для теста",
		Category:    category,
		City:        city,
		Email:       "club@example.kz",
		Tags:        domain.DefaultTags,
	}
}

func TestCreateAndGetClub(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	id, err := repo.CreateClub(ctx, sampleClub("Шахматный клуб", "Хобби", "Алматы"))
	if err != nil {
		t.Fatalf("CreateClub failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated club id")
	}

	club, err := repo.GetClub(ctx, id)
	if err != nil {
		t.Fatalf("GetClub failed: %v", err)
	}
	if club == nil {
		t.Fatal("expected club to exist")
	}
	if club.Name != "Шахматный клуб" || club.City != "Алматы" {
		t.Fatalf("unexpected club data: %+v", club)
	}

	missing, err := repo.GetClub(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("GetClub for missing id failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing club, got %+v", missing)
	}
}

func TestSearchClubsFilters(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	for _, club := range []*domain.ClubRecord{
		sampleClub("Беговой клуб", "Спорт", "Алматы"),
		sampleClub("Книжный клуб", "Обучение", "Астана"),
		sampleClub("Футбольный клуб", "Спорт", "Астана"),
	} {
		if _, err := repo.CreateClub(ctx, club); err != nil {
			t.Fatalf("CreateClub failed: %v", err)
		}
	}

	sport, err := repo.SearchClubs(ctx, SearchFilter{Category: "Спорт"})
	if err != nil {
		t.Fatalf("SearchClubs failed: %v", err)
	}
	if len(sport) != 2 {
		t.Fatalf("expected 2 sport clubs, got %d", len(sport))
	}

	astana, err := repo.SearchClubs(ctx, SearchFilter{Category: "Спорт", City: "Астана"})
	if err != nil {
		t.Fatalf("SearchClubs failed: %v", err)
	}
	if len(astana) != 1 || astana[0].Name != "Футбольный клуб" {
		t.Fatalf("unexpected filtered result: %+v", astana)
	}

	byText, err := repo.SearchClubs(ctx, SearchFilter{Query: "Книжный"})
	if err != nil {
		t.Fatalf("SearchClubs failed: %v", err)
	}
	if len(byText) != 1 || byText[0].Name != "Книжный клуб" {
		t.Fatalf("unexpected text search result: %+v", byText)
	}
}

func TestAppendAndReadTurns(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	turns := []*domain.ChatTurn{
		{UserID: "u1", AgentName: "orchestrator", Action: domain.ActionChatReply, Details: "привет"},
		{UserID: "u1", AgentName: "club_specialist", Action: domain.ActionWorkflowStart, Details: "создать клуб"},
	}
	for _, turn := range turns {
		if err := repo.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := repo.RecentTurns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	// Newest first.
	if got[0].Action != domain.ActionWorkflowStart {
		t.Fatalf("expected newest turn first, got %+v", got[0])
	}
}

func TestTrimDetailsBoundsLength(t *testing.T) {
	t.Parallel()

	long := make([]rune, 600)
	for i := range long {
		long[i] = 'ж'
	}
	got := TrimDetails(string(long))
	if len([]rune(got)) > 501 {
		t.Fatalf("expected details bounded, got %d runes", len([]rune(got)))
	}
}
