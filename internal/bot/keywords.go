package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ItalianKeywords trigger an automatic web search for Italian-speaking users.
var ItalianKeywords = []string{
	"oggi", "tempo", "meteo", "novità", "ultime", "notizie", "ieri",
	"adesso", "recenti", "chi ha vinto", "è uscito", "quando esce",
}

// EnglishKeywords trigger an automatic web search for English-speaking users.
var EnglishKeywords = []string{
	"today", "weather", "news", "yesterday", "now", "recent", "latest",
	"who won", "come out", "released",
}

// KeywordSet matches whole words or phrases, ignoring case.
type KeywordSet struct {
	phrases []string
}

// NewKeywordSet builds a set from words and multi-word phrases.
func NewKeywordSet(words ...string) *KeywordSet {
	ks := &KeywordSet{}
	for _, w := range words {
		w = normalize(w)
		if w != "" {
			ks.phrases = append(ks.phrases, w)
		}
	}
	return ks
}

// Match reports whether text contains any keyword as a whole word or phrase.
// "meteo" matches "che meteo fa?" but not "meteorologia".
func (ks *KeywordSet) Match(text string) bool {
	if ks == nil || len(ks.phrases) == 0 {
		return false
	}
	text = normalize(text)
	for _, p := range ks.phrases {
		if containsWord(text, p) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsWord(text, phrase string) bool {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
