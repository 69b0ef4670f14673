// Package domain contains the core types of the consultant service.
package domain

import "time"

// Step identifies a stage of the club creation dialogue.
type Step string

const (
	StepName        Step = "name"
	StepDescription Step = "description"
	StepCategory    Step = "category"
	StepCity        Step = "city"
	StepEmail       Step = "email"
	StepPhone       Step = "phone"
	StepAddress     Step = "address"
	StepDone        Step = "done"
)

// StepOrder is the fixed question sequence of the creation flow.
var StepOrder = []Step{
	StepName,
	StepDescription,
	StepCategory,
	StepCity,
	StepEmail,
	StepPhone,
	StepAddress,
	StepDone,
}

// Next returns the step that follows s. Done is terminal.
func (s Step) Next() Step {
	for i, step := range StepOrder {
		if step == s && i < len(StepOrder)-1 {
			return StepOrder[i+1]
		}
	}
	return StepDone
}

// Progress returns how far s is through the flow, as a percentage.
func (s Step) Progress() int {
	for i, step := range StepOrder {
		if step == s {
			return i * 100 / (len(StepOrder) - 1)
		}
	}
	return 0
}

// Field keys collected during the creation flow.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldCity        = "city"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldAddress     = "address"
)

// ConversationState is the in-progress club creation form for one token.
type ConversationState struct {
	Token     string
	Step      Step
	Fields    map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversationState returns a fresh state positioned at the first step.
func NewConversationState(token string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		Token:     token,
		Step:      StepName,
		Fields:    make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetField records an answered field and bumps the update timestamp.
func (s *ConversationState) SetField(key, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	s.Fields[key] = value
	s.UpdatedAt = time.Now()
}

// Clone returns a deep copy safe to hand outside the store's locks.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	fields := make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}
	c := *s
	c.Fields = fields
	return &c
}
