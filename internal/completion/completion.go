// Package completion wraps the external text-generation provider
// behind a minimal client interface.
package completion

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the completion provider cannot be
// reached or returns an unusable response.
var ErrUnavailable = errors.New("completion service unavailable")

// Request is one completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Client produces completions. Implementations must be safe for
// concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
