package bot

import (
	"fmt"
	"strings"
)

// Catalog holds every user-facing string for one locale.
type Catalog struct {
	Searching           string
	MemoryReset         string
	AccessDenied        string
	Goodbye             string
	WebUsage            string
	UnknownEngine       string
	EngineNotConfigured string
	ImageUsage          string
	ImageFailed         string
	TTSUsage            string
	TTSFailed           string
	VoiceFailed         string
	PhotoFailed         string
	VisionPrompt        string
	PDFOnly             string
	PDFReceived         string
	PDFFailed           string
	ChatFailed          string
	SearchFailed        string
	NotConfigured       string
	Help                string

	whoAmI    string
	webNotice string
	noResults string
}

// WhoAmI formats the identity reply. The result is Markdown.
func (c *Catalog) WhoAmI(id, username string) string {
	if username == "" {
		username = "-"
	} else {
		username = "@" + escapeMarkdown(username)
	}
	return fmt.Sprintf(c.whoAmI, id, username)
}

// markdownEscaper escapes the characters that open an entity in Telegram's
// legacy Markdown mode.
var markdownEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// WebNotice announces an explicit search.
func (c *Catalog) WebNotice(query, engine string) string {
	return fmt.Sprintf(c.webNotice, query, engine)
}

// NoResults reports an empty result set from engine.
func (c *Catalog) NoResults(engine string) string {
	return fmt.Sprintf(c.noResults, engine)
}

var italian = &Catalog{
	Searching:           "🧠 Sto cercando info aggiornate per te...",
	MemoryReset:         "🧠 Memoria resettata!",
	AccessDenied:        "⛔ Accesso negato.",
	Goodbye:             "Bot in arresto. 🛑",
	WebUsage:            "Usa: /web [brave|serp] <domanda>",
	UnknownEngine:       "Motore non riconosciuto. Usa 'brave' o 'serp'.",
	EngineNotConfigured: "Questo motore di ricerca non è configurato.",
	ImageUsage:          "Scrivi un prompt dopo il comando /image.",
	ImageFailed:         "Errore nella generazione dell'immagine.",
	TTSUsage:            "Scrivi qualcosa dopo il comando /tts.",
	TTSFailed:           "Errore nella sintesi vocale.",
	VoiceFailed:         "Errore nella trascrizione del vocale.",
	PhotoFailed:         "Errore nell'analisi dell'immagine.",
	VisionPrompt:        "Cosa c'è in questa immagine?",
	PDFOnly:             "Invia un file PDF per poterlo leggere.",
	PDFReceived:         "✅ PDF ricevuto e analizzato!",
	PDFFailed:           "Errore nella lettura del PDF.",
	ChatFailed:          "Errore durante la generazione della risposta 😢",
	SearchFailed:        "Errore durante la ricerca.",
	NotConfigured:       "Questa funzione non è configurata su questo bot.",
	Help: "Comandi disponibili:\n" +
		"/reset - cancella la memoria della conversazione\n" +
		"/web [brave|serp] <domanda> - cerca sul web\n" +
		"/image <prompt> - genera un'immagine\n" +
		"/tts <testo> - sintesi vocale\n" +
		"/whoami - mostra il tuo ID\n" +
		"Puoi anche inviare vocali, foto e PDF.",
	whoAmI:    "🧾 Il tuo ID è `%s`\nUsername: %s",
	webNotice: "🔍 Cerco '%s' con %s...",
	noResults: "Nessun risultato trovato da %s.",
}

var english = &Catalog{
	Searching:           "🧠 Looking up fresh information for you...",
	MemoryReset:         "🧠 Memory cleared!",
	AccessDenied:        "⛔ Access denied.",
	Goodbye:             "Bot shutting down. 🛑",
	WebUsage:            "Usage: /web [brave|serp] <question>",
	UnknownEngine:       "Unknown engine. Use 'brave' or 'serp'.",
	EngineNotConfigured: "This search engine is not configured.",
	ImageUsage:          "Write a prompt after the /image command.",
	ImageFailed:         "Image generation failed.",
	TTSUsage:            "Write something after the /tts command.",
	TTSFailed:           "Speech synthesis failed.",
	VoiceFailed:         "Voice message transcription failed.",
	PhotoFailed:         "Image analysis failed.",
	VisionPrompt:        "What is in this image?",
	PDFOnly:             "Send a PDF file so I can read it.",
	PDFReceived:         "✅ PDF received and analysed!",
	PDFFailed:           "Could not read the PDF.",
	ChatFailed:          "Something went wrong while generating the reply 😢",
	SearchFailed:        "The search failed.",
	NotConfigured:       "This feature is not configured on this bot.",
	Help: "Available commands:\n" +
		"/reset - clear conversation memory\n" +
		"/web [brave|serp] <question> - search the web\n" +
		"/image <prompt> - generate an image\n" +
		"/tts <text> - text to speech\n" +
		"/whoami - show your ID\n" +
		"You can also send voice notes, photos and PDFs.",
	whoAmI:    "🧾 Your ID is `%s`\nUsername: %s",
	webNotice: "🔍 Searching '%s' with %s...",
	noResults: "No results found by %s.",
}

// CatalogFor returns the catalog and auto-search keywords for locale,
// defaulting to Italian.
func CatalogFor(locale string) (*Catalog, *KeywordSet) {
	if locale == "en" {
		return english, NewKeywordSet(EnglishKeywords...)
	}
	return italian, NewKeywordSet(ItalianKeywords...)
}
