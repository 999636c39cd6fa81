package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider using the OpenAI API. It also serves
// the image, speech, transcription and vision calls (see media.go).
// Works with compatible APIs via BaseURL.
type OpenAIProvider struct {
	client       openai.Client
	defaultModel string
	media        MediaModels
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Media   MediaModels
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIProvider{
		client:       openai.NewClient(opts...),
		defaultModel: model,
		media:        cfg.Media.withDefaults(),
	}
}

func (p *OpenAIProvider) Name() string         { return "openai" }
func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

func (p *OpenAIProvider) Chat(ctx context.Context, req *ChatRequest) (*LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: p.convertMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	return p.convertResponse(resp), nil
}

func (p *OpenAIProvider) convertMessages(req *ChatRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "user":
			msgs = append(msgs, openai.UserMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}
	return msgs
}

func (p *OpenAIProvider) convertResponse(resp *openai.ChatCompletion) *LLMResponse {
	result := &LLMResponse{
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		result.Content = choice.Message.Content
		result.StopReason = string(choice.FinishReason)
	}

	return result
}

func classifyOpenAIError(err error) *LLMError {
	llmErr := &LLMError{Err: err, Message: err.Error()}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		llmErr.Type = classifyStatus(apiErr.StatusCode)
		return llmErr
	}

	llmErr.Type = classifyMessage(err)
	return llmErr
}

// classifyStatus maps an HTTP status code to an ErrorType.
func classifyStatus(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorAuth
	case code == http.StatusTooManyRequests:
		return ErrorRateLimit
	case code == http.StatusRequestTimeout:
		return ErrorTimeout
	case code >= 500:
		return ErrorServerError
	case code >= 400:
		return ErrorInvalidInput
	default:
		return ErrorUnknown
	}
}

// classifyMessage handles errors that never reached the API.
func classifyMessage(err error) ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return ErrorTimeout
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dns") || strings.Contains(lower, "refused"):
		return ErrorNetwork
	default:
		return ErrorUnknown
	}
}
