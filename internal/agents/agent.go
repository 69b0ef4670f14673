// Package agents defines the assistant personas, their registry, and
// routing between them.
package agents

// ToolSpec describes a callable action an agent exposes to the
// completion service, in JSON-schema form.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Descriptor is an immutable agent persona.
type Descriptor struct {
	Name         string
	Description  string
	SystemPrompt string
	Tools        []ToolSpec
}
