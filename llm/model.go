// Package llm provides the model-provider capability used by the talk-show
// pipeline: send a prompt, receive text.
package llm

import (
	"context"
	"fmt"
)

// Format selects how the model should shape its reply.
type Format int

const (
	// FormatText asks for free-form text.
	FormatText Format = iota
	// FormatJSON asks for a single JSON object.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Prompt is a provider-agnostic request.
type Prompt struct {
	System string
	User   string
	Format Format
}

// Model is the single capability the pipeline needs from a provider.
// Implementations must be safe for concurrent use.
type Model interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// APIError represents a non-2xx reply from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

func truncateBody(b []byte) string {
	s := string(b)
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
