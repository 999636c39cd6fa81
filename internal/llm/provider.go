package llm

import "context"

// Provider is the interface all chat completion backends implement.
type Provider interface {
	// Chat sends a chat completion request and returns the full response.
	Chat(ctx context.Context, req *ChatRequest) (*LLMResponse, error)

	// Name returns the provider name (e.g. "openai", "anthropic").
	Name() string

	// DefaultModel returns the default model for this provider.
	DefaultModel() string
}

// LLMError wraps an error with a classification for fallback logic.
type LLMError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return e.Type.String() + ": " + e.Message
	}
	return e.Message
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// Complete runs a chat request and returns the reply text. An empty reply
// is reported as an error so callers never send blank messages.
func Complete(ctx context.Context, p Provider, req *ChatRequest) (string, error) {
	resp, err := p.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", &LLMError{Type: ErrorEmpty, Message: p.Name() + " returned an empty reply"}
	}
	return resp.Content, nil
}
