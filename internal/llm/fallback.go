package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FallbackProvider tries providers in order, falling back on retryable errors.
type FallbackProvider struct {
	providers []Provider
	logger    *zap.Logger
}

// NewFallbackProvider creates a provider chain. The first provider is primary.
func NewFallbackProvider(logger *zap.Logger, providers ...Provider) *FallbackProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackProvider{providers: providers, logger: logger.Named("fallback")}
}

func (f *FallbackProvider) Name() string {
	if len(f.providers) > 0 {
		return f.providers[0].Name() + "+fallback"
	}
	return "fallback"
}

func (f *FallbackProvider) DefaultModel() string {
	if len(f.providers) > 0 {
		return f.providers[0].DefaultModel()
	}
	return ""
}

func (f *FallbackProvider) Chat(ctx context.Context, req *ChatRequest) (*LLMResponse, error) {
	if len(f.providers) == 0 {
		return nil, &LLMError{Type: ErrorUnknown, Message: "no providers configured"}
	}

	var lastErr error
	for i, p := range f.providers {
		attempt := *req
		if i > 0 {
			// the model name belongs to the primary provider
			attempt.Model = ""
		}
		resp, err := p.Chat(ctx, &attempt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		f.logger.Warn("provider failed, trying next", zap.String("provider", p.Name()), zap.Error(err))
	}
	return nil, lastErr
}

// isRetryable returns true for errors that warrant trying a different provider.
func isRetryable(err error) bool {
	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		return true // unknown errors are retryable
	}
	switch llmErr.Type {
	case ErrorAuth, ErrorInvalidInput:
		return false // these won't succeed on retry
	default:
		return true
	}
}
