package security

import (
	"regexp"
	"sort"
	"strings"
)

// minSecretLen keeps short values (e.g. numeric ids) from being masked everywhere.
const minSecretLen = 8

var piiPatterns = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), "[EMAIL]"},
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "[CARD]"},
	{regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`), "[PHONE]"},
}

// Redactor masks credentials and, optionally, personal data in text that is
// about to be logged. Bot API errors embed the token in request URLs.
type Redactor struct {
	secrets []string
	pii     bool
}

// NewRedactor creates a redactor for the given secret values.
func NewRedactor(secrets []string, filterPII bool) *Redactor {
	r := &Redactor{pii: filterPII}
	for _, s := range secrets {
		if len(s) >= minSecretLen && s != SecretPlaceholder {
			r.secrets = append(r.secrets, s)
		}
	}
	// longest first so a secret containing another is masked whole
	sort.Slice(r.secrets, func(i, j int) bool { return len(r.secrets[i]) > len(r.secrets[j]) })
	return r
}

// Redact returns text with secrets replaced by their masked form. A nil
// Redactor returns text unchanged.
func (r *Redactor) Redact(text string) string {
	if r == nil || text == "" {
		return text
	}
	for _, s := range r.secrets {
		text = strings.ReplaceAll(text, s, MaskKey(s))
	}
	if r.pii {
		for _, p := range piiPatterns {
			text = p.pattern.ReplaceAllString(text, p.label)
		}
	}
	return text
}
