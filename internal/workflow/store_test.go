package workflow

import (
	"sync"
	"testing"
	"time"

	"github.com/fanclubkz/consultant/internal/domain"
)

func TestMemoryStoreUpdateIsAtomicPerToken(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	store.Create("tok")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update("tok", func(state *domain.ConversationState) error {
				v := state.Fields["counter"]
				state.SetField("counter", v+"x")
				return nil
			})
		}()
	}
	wg.Wait()

	state, ok := store.Get("tok")
	if !ok {
		t.Fatal("expected state to exist")
	}
	if got := len(state.Fields["counter"]); got != workers {
		t.Fatalf("lost updates: expected %d appends, got %d", workers, got)
	}
}

func TestMemoryStoreEvictedTokenIsUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	store.Create("tok")
	store.Evict("tok")

	if _, ok := store.Get("tok"); ok {
		t.Fatal("expected evicted token to be unknown")
	}
	err := store.Update("tok", func(*domain.ConversationState) error { return nil })
	if err != ErrUnknownConversation {
		t.Fatalf("expected ErrUnknownConversation, got %v", err)
	}
}

func TestMemoryStoreSweepEvictsExpired(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10 * time.Millisecond)
	store.Create("old")
	store.Create("fresh")

	time.Sleep(20 * time.Millisecond)
	_ = store.Update("fresh", func(state *domain.ConversationState) error {
		state.SetField(domain.FieldName, "Клуб")
		return nil
	})

	store.sweep()

	if _, ok := store.Get("old"); ok {
		t.Fatal("expected stale state to be swept")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Fatal("expected recently updated state to survive")
	}
}

func TestMemoryStoreCreateReplacesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	store.Create("tok")
	_ = store.Update("tok", func(state *domain.ConversationState) error {
		state.SetField(domain.FieldName, "Первый")
		state.Step = domain.StepDescription
		return nil
	})

	state := store.Create("tok")
	if state.Step != domain.StepName || len(state.Fields) != 0 {
		t.Fatalf("expected fresh state after re-create, got %+v", state)
	}
	if store.Len() != 1 {
		t.Fatalf("expected single live state, got %d", store.Len())
	}
}
