package config

// Config is the top-level application configuration.
type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	LLM       LLMConfig       `yaml:"llm"`
	Media     MediaConfig     `yaml:"media"`
	Search    SearchConfig    `yaml:"search"`
	Memory    MemoryConfig    `yaml:"memory"`
	Journal   JournalConfig   `yaml:"journal"`
	KeepAlive KeepAliveConfig `yaml:"keepalive"`
	Log       LogConfig       `yaml:"log"`
	DataDir   string          `yaml:"data_dir"`
}

type BotConfig struct {
	AdminID      string `yaml:"admin_id"`
	Locale       string `yaml:"locale"`
	SystemPrompt string `yaml:"system_prompt,omitempty"`
	PDFPrefixLen int    `yaml:"pdf_prefix_len"`
	StagingDir   string `yaml:"staging_dir,omitempty"`
}

type TelegramConfig struct {
	Token       string  `yaml:"token"`
	AllowedIDs  []int64 `yaml:"allowed_ids,omitempty"`
	PollTimeout int     `yaml:"poll_timeout_secs"`
}

type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	FallbackModel   string  `yaml:"fallback_model,omitempty"`
	OpenAIAPIKey    string  `yaml:"openai_api_key,omitempty"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key,omitempty"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
}

type MediaConfig struct {
	ImageModel         string `yaml:"image_model"`
	ImageSize          string `yaml:"image_size"`
	SpeechModel        string `yaml:"speech_model"`
	SpeechVoice        string `yaml:"speech_voice"`
	TranscriptionModel string `yaml:"transcription_model"`
	VisionModel        string `yaml:"vision_model"`
}

type SearchConfig struct {
	BraveAPIKey string `yaml:"brave_api_key,omitempty"`
	SerpAPIKey  string `yaml:"serpapi_api_key,omitempty"`
	AutoEngine  string `yaml:"auto_engine,omitempty"`
	MaxResults  int    `yaml:"max_results"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type MemoryConfig struct {
	MaxUsers int `yaml:"max_users"`
}

type JournalConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

type KeepAliveConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	RedactPII  bool   `yaml:"redact_pii"`
}
