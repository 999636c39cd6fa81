package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".assistbot"
	configFile = "config.yaml"
	envFile    = ".env"
)

// Loader reads configuration from defaults, an optional YAML file, an
// optional .env file and the process environment, in that order.
type Loader struct {
	filePath string
	envPath  string
	lookup   func(string) (string, bool)
}

// NewLoader creates a loader for the given YAML file. An empty path means
// ~/.assistbot/config.yaml.
func NewLoader(filePath string) (*Loader, error) {
	if filePath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(dir, configFile)
	}
	return &Loader{
		filePath: filePath,
		envPath:  envFile,
		lookup:   os.LookupEnv,
	}, nil
}

// DefaultDir returns ~/.assistbot.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

// Load builds the effective config. A missing YAML or .env file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(l.filePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.filePath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", l.filePath, err)
	}

	// godotenv never overrides variables that are already set.
	if l.envPath != "" {
		if err := godotenv.Load(l.envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", l.envPath, err)
		}
	}

	if err := applyEnv(cfg, l.lookup); err != nil {
		return nil, err
	}
	cfg.Bot.AdminID = canonicalID(cfg.Bot.AdminID)

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(l.filePath)
	}
	if cfg.Journal.Path == "" {
		name := "conversations.db"
		if cfg.Journal.Backend == "jsonl" {
			name = "conversations.jsonl"
		}
		cfg.Journal.Path = filepath.Join(cfg.DataDir, name)
	}

	return cfg, nil
}

// Save writes cfg as YAML to the loader's file.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.filePath), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(l.filePath, data, 0600)
}

// FilePath returns the config file path.
func (l *Loader) FilePath() string {
	return l.filePath
}

type envBinding struct {
	name  string
	apply func(cfg *Config, value string) error
}

func setString(dst func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		*dst(cfg) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"TELEGRAM_TOKEN", setString(func(c *Config) *string { return &c.Telegram.Token })},
	{"OPENAI_API_KEY", setString(func(c *Config) *string { return &c.LLM.OpenAIAPIKey })},
	{"ANTHROPIC_API_KEY", setString(func(c *Config) *string { return &c.LLM.AnthropicAPIKey })},
	{"ADMIN_ID", setString(func(c *Config) *string { return &c.Bot.AdminID })},
	{"BRAVE_API_KEY", setString(func(c *Config) *string { return &c.Search.BraveAPIKey })},
	{"SERPAPI_API_KEY", setString(func(c *Config) *string { return &c.Search.SerpAPIKey })},
	{"SEARCH_AUTO_ENGINE", setString(func(c *Config) *string { return &c.Search.AutoEngine })},
	{"LLM_PROVIDER", setString(func(c *Config) *string { return &c.LLM.Provider })},
	{"LLM_MODEL", setString(func(c *Config) *string { return &c.LLM.Model })},
	{"LLM_FALLBACK_MODEL", setString(func(c *Config) *string { return &c.LLM.FallbackModel })},
	{"OPENAI_BASE_URL", setString(func(c *Config) *string { return &c.LLM.BaseURL })},
	{"BOT_LOCALE", setString(func(c *Config) *string { return &c.Bot.Locale })},
	{"JOURNAL_BACKEND", setString(func(c *Config) *string { return &c.Journal.Backend })},
	{"JOURNAL_PATH", setString(func(c *Config) *string { return &c.Journal.Path })},
	{"KEEPALIVE_ADDR", setString(func(c *Config) *string { return &c.KeepAlive.Addr })},
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FILE", setString(func(c *Config) *string { return &c.Log.File })},
	{"DATA_DIR", setString(func(c *Config) *string { return &c.DataDir })},
	{"ALLOWED_IDS", func(c *Config, v string) error {
		ids, err := parseIDs(v)
		if err != nil {
			return err
		}
		c.Telegram.AllowedIDs = ids
		return nil
	}},
	{"MEMORY_MAX_USERS", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Memory.MaxUsers = n
		return nil
	}},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			return fmt.Errorf("invalid %s: %w", b.name, err)
		}
	}
	return nil
}

// canonicalID rewrites a numeric user id in the form Telegram reports it,
// so "+42" and "042" become "42". Other values are left for Validate.
func canonicalID(s string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return s
	}
	return strconv.FormatInt(id, 10)
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
