// Package completion calls the Anthropic Messages API.
package completion

import (
	"context"
	"errors"

	"github.com/seology-ai/seology/internal/prompt"
)

var (
	// ErrNonTextContent means the model's first content block was not text.
	// There is no rendering path for non-text output, so this is a hard failure.
	ErrNonTextContent = errors.New("non_text_content")
	// ErrProvider wraps transport and API-level failures from the provider.
	ErrProvider = errors.New("provider_error")
	// ErrMissingAPIKey means the gateway was constructed without credentials.
	ErrMissingAPIKey = errors.New("missing_api_key")
)

// Usage carries the token counts reported on a completion response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Request is one conversational completion call.
type Request struct {
	System   string
	Messages []prompt.Message
}

// Response is the text outcome of one completion call.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Client sends assembled prompts to a text-completion provider.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
