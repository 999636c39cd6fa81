package config

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Bot: BotConfig{
			Locale:       "it",
			PDFPrefixLen: 1000,
		},
		Telegram: TelegramConfig{
			PollTimeout: 10,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			MaxTokens:   1024,
			Temperature: 0.7,
			TimeoutSecs: 120,
		},
		Media: MediaConfig{
			ImageModel:         "dall-e-3",
			ImageSize:          "1024x1024",
			SpeechModel:        "tts-1",
			SpeechVoice:        "nova",
			TranscriptionModel: "whisper-1",
			VisionModel:        "gpt-4o",
		},
		Search: SearchConfig{
			MaxResults:  3,
			TimeoutSecs: 15,
		},
		Journal: JournalConfig{
			Backend: "sqlite",
		},
		KeepAlive: KeepAliveConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxAgeDays: 28,
			RedactPII:  true,
		},
	}
}
