package config

import (
	"fmt"
	"strconv"
	"strings"
)

// maxSearchResults caps how many results a search reply may list.
const maxSearchResults = 3

// ValidationError lists every configuration problem found at startup.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid settings: "+strings.Join(e.Invalid, "; "))
	}
	return "config: " + strings.Join(parts, "; ")
}

// Validate checks that required credentials are present and that enumerated
// settings hold known values. Run it after secrets have been resolved.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if c.Telegram.Token == "" {
		verr.Missing = append(verr.Missing, "TELEGRAM_TOKEN")
	}
	if c.LLM.OpenAIAPIKey == "" {
		verr.Missing = append(verr.Missing, "OPENAI_API_KEY")
	}
	if c.Bot.AdminID == "" {
		verr.Missing = append(verr.Missing, "ADMIN_ID")
	} else if _, err := strconv.ParseInt(c.Bot.AdminID, 10, 64); err != nil {
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("ADMIN_ID %q is not a numeric user id", c.Bot.AdminID))
	}

	switch c.LLM.Provider {
	case "openai":
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			verr.Missing = append(verr.Missing, "ANTHROPIC_API_KEY")
		}
	default:
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("llm.provider %q (want openai or anthropic)", c.LLM.Provider))
	}

	switch c.Bot.Locale {
	case "it", "en":
	default:
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("bot.locale %q (want it or en)", c.Bot.Locale))
	}

	switch c.Journal.Backend {
	case "sqlite", "jsonl":
	default:
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("journal.backend %q (want sqlite or jsonl)", c.Journal.Backend))
	}

	if c.Search.MaxResults < 1 || c.Search.MaxResults > maxSearchResults {
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("search.max_results %d (want 1 to %d)", c.Search.MaxResults, maxSearchResults))
	}

	switch c.Search.AutoEngine {
	case "", "brave", "serp", "duckduckgo":
	default:
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("search.auto_engine %q", c.Search.AutoEngine))
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}
