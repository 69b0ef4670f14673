package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fanclubkz/consultant/internal/domain"
)

// ClubPersister stores a completed club record and returns its ID.
type ClubPersister interface {
	CreateClub(ctx context.Context, club *domain.ClubRecord) (string, error)
}

// StepResult is the user-visible outcome of one workflow interaction.
type StepResult struct {
	Message   string
	Step      domain.Step
	Progress  int
	Completed bool
	Canceled  bool
	ClubID    string
}

// Workflow is the club creation step machine over a StateStore.
type Workflow struct {
	store StateStore
	clubs ClubPersister
}

// New returns a workflow backed by the given store and persister.
func New(store StateStore, clubs ClubPersister) *Workflow {
	return &Workflow{store: store, clubs: clubs}
}

var cancelWords = []string{"отмена", "cancel", "стоп"}
var helpWords = []string{"помощь", "help"}
var skipWords = []string{"нет", "no"}

func matchesAny(message string, words []string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	for _, w := range words {
		if m == w {
			return true
		}
	}
	return false
}

// Start creates fresh state for the token and returns the first
// question.
func (w *Workflow) Start(token string) StepResult {
	state := w.store.Create(token)
	slog.Info("club creation started", "token", token)
	return StepResult{
		Message:  stepPrompts[domain.StepName],
		Step:     state.Step,
		Progress: state.Step.Progress(),
	}
}

// Advance applies one user answer to the token's state. It returns
// ErrUnknownConversation for tokens with no live state. Validation
// failures keep the current step and re-ask; accepting the final
// answer persists the club and evicts the state either way.
func (w *Workflow) Advance(ctx context.Context, token, message string, ownerID string) (StepResult, error) {
	if matchesAny(message, cancelWords) {
		w.store.Evict(token)
		slog.Info("club creation canceled", "token", token)
		return StepResult{Message: textCanceled, Canceled: true}, nil
	}

	var result StepResult
	err := w.store.Update(token, func(state *domain.ConversationState) error {
		if matchesAny(message, helpWords) {
			result = StepResult{
				Message:  stepHints[state.Step] + "\n\n" + stepPrompts[state.Step],
				Step:     state.Step,
				Progress: state.Step.Progress(),
			}
			return nil
		}

		answer := strings.TrimSpace(message)
		if answer == "" {
			result = StepResult{
				Message:  fmt.Sprintf(textEmptyAnswer, stepPrompts[state.Step]),
				Step:     state.Step,
				Progress: state.Step.Progress(),
			}
			return nil
		}

		accepted, reply := applyAnswer(state, answer)
		if !accepted {
			result = StepResult{Message: reply, Step: state.Step, Progress: state.Step.Progress()}
			return nil
		}

		if state.Step != domain.StepDone {
			result = StepResult{
				Message:  stepPrompts[state.Step],
				Step:     state.Step,
				Progress: state.Step.Progress(),
			}
			return nil
		}

		club := buildClub(state, ownerID)
		id, err := w.clubs.CreateClub(ctx, club)
		if err != nil {
			slog.Error("club persistence failed", "token", token, "error", err)
			result = StepResult{Message: textPersistError, Step: domain.StepDone, Completed: false}
			return errPersistFailed
		}
		club.ID = id

		slog.Info("club created", "token", token, "club_id", id, "name", club.Name)
		result = StepResult{
			Message:   successText(club),
			Step:      domain.StepDone,
			Progress:  100,
			Completed: true,
			ClubID:    id,
		}
		return nil
	})

	switch {
	case err == nil && result.Completed:
		w.store.Evict(token)
	case errors.Is(err, errPersistFailed):
		// Persistence failure also ends the conversation.
		w.store.Evict(token)
		return result, nil
	case err != nil:
		return StepResult{}, err
	}
	return result, nil
}

// errPersistFailed is internal plumbing between the Update closure and
// Advance; the user sees textPersistError, not this error.
var errPersistFailed = errors.New("club persistence failed")

// applyAnswer validates the answer for the state's current step. On
// success it records the field, advances the step and returns true.
func applyAnswer(state *domain.ConversationState, answer string) (bool, string) {
	switch state.Step {
	case domain.StepName:
		state.SetField(domain.FieldName, answer)
	case domain.StepDescription:
		if n := len([]rune(answer)); n < minDescriptionLen {
			return false, fmt.Sprintf(textDescriptionTooShort, n)
		}
		state.SetField(domain.FieldDescription, answer)
	case domain.StepCategory:
		state.SetField(domain.FieldCategory, answer)
	case domain.StepCity:
		state.SetField(domain.FieldCity, answer)
	case domain.StepEmail:
		if !strings.Contains(answer, "@") {
			return false, textEmailInvalid
		}
		state.SetField(domain.FieldEmail, answer)
	case domain.StepPhone:
		if matchesAny(answer, skipWords) {
			answer = domain.PlaceholderPhone
		}
		state.SetField(domain.FieldPhone, answer)
	case domain.StepAddress:
		if matchesAny(answer, skipWords) {
			answer = domain.PlaceholderAddress
		}
		state.SetField(domain.FieldAddress, answer)
	}

	state.Step = state.Step.Next()
	return true, ""
}

func buildClub(state *domain.ConversationState, ownerID string) *domain.ClubRecord {
	return &domain.ClubRecord{
		Name:           state.Fields[domain.FieldName],
		Description:    state.Fields[domain.FieldDescription],
		Category:       state.Fields[domain.FieldCategory],
		City:           state.Fields[domain.FieldCity],
		Email:          state.Fields[domain.FieldEmail],
		Phone:          state.Fields[domain.FieldPhone],
		Address:        state.Fields[domain.FieldAddress],
		Activities:     domain.DefaultActivities,
		TargetAudience: domain.DefaultTargetAudience,
		Tags:           domain.DefaultTags,
		OwnerID:        ownerID,
		CreatedAt:      time.Now(),
	}
}
