package llm

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"assistbot/internal/config"
)

// NewOpenAIFromConfig builds the OpenAI client used for chat and media.
func NewOpenAIFromConfig(cfg config.LLMConfig, media config.MediaConfig) *OpenAIProvider {
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.BaseURL,
		Model:   modelFor(cfg, "openai"),
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		Media: MediaModels{
			Image:         media.ImageModel,
			ImageSize:     media.ImageSize,
			Speech:        media.SpeechModel,
			Voice:         media.SpeechVoice,
			Transcription: media.TranscriptionModel,
			Vision:        media.VisionModel,
		},
	})
}

// NewProvider creates the chat completion provider from config. When keys
// for both OpenAI and Anthropic are present the other one becomes a fallback.
func NewProvider(cfg config.LLMConfig, openaiProvider *OpenAIProvider, logger *zap.Logger) (Provider, error) {
	var anthropicProvider Provider
	if cfg.AnthropicAPIKey != "" {
		anthropicProvider = NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   modelFor(cfg, "anthropic"),
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		})
	}

	switch cfg.Provider {
	case "openai", "":
		if anthropicProvider == nil {
			return openaiProvider, nil
		}
		return NewFallbackProvider(logger, openaiProvider, anthropicProvider), nil
	case "anthropic":
		if anthropicProvider == nil {
			return nil, fmt.Errorf("anthropic provider selected but no API key configured")
		}
		return NewFallbackProvider(logger, anthropicProvider, openaiProvider), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// modelFor returns the configured model when it targets the given provider;
// the fallback provider uses FallbackModel or its own default.
func modelFor(cfg config.LLMConfig, provider string) string {
	if cfg.Provider == provider || (cfg.Provider == "" && provider == "openai") {
		if provider == "anthropic" && cfg.Model == config.Defaults().LLM.Model {
			return ""
		}
		return cfg.Model
	}
	return cfg.FallbackModel
}
