package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"assistbot/internal/security"
)

// maxMessageRunes stays under Telegram's 4096 character limit.
const maxMessageRunes = 4000

// TelegramChannel integrates with the Telegram Bot API.
type TelegramChannel struct {
	mu          sync.Mutex
	token       string
	pollTimeout time.Duration
	logger      *zap.Logger
	redactor    *security.Redactor
	bot         *tele.Bot
	handler     func(InboundMessage)
	running     bool
}

// TelegramConfig holds Telegram-specific configuration.
type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
	Logger      *zap.Logger
	Redactor    *security.Redactor
}

// NewTelegramChannel creates a new Telegram channel.
func NewTelegramChannel(cfg TelegramConfig) *TelegramChannel {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &TelegramChannel{
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
		logger:      cfg.Logger.Named("telegram"),
		redactor:    cfg.Redactor,
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	pref := tele.Settings{
		Token:  t.token,
		Poller: &tele.LongPoller{Timeout: t.pollTimeout},
		OnError: func(err error, c tele.Context) {
			t.logger.Error("update failed", zap.String("error", t.redactor.Redact(err.Error())))
		},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return fmt.Errorf("telegram bot init: %s", t.redactor.Redact(err.Error()))
	}

	// Commands without a registered endpoint fall through to OnText, so
	// command parsing stays with the router.
	bot.Handle(tele.OnText, t.forward(KindText))
	bot.Handle(tele.OnVoice, t.forward(KindVoice))
	bot.Handle(tele.OnPhoto, t.forward(KindPhoto))
	bot.Handle(tele.OnDocument, t.forward(KindDocument))

	t.bot = bot
	t.running = true

	go bot.Start()

	// Stop bot when context is cancelled
	go func() {
		<-ctx.Done()
		_ = t.Stop(context.Background())
	}()

	t.logger.Info("polling started", zap.String("bot", bot.Me.Username))
	return nil
}

// forward converts a telebot update into an InboundMessage for the handler.
func (t *TelegramChannel) forward(kind Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		t.mu.Lock()
		handler := t.handler
		t.mu.Unlock()

		if handler == nil {
			return nil
		}
		msg, ok := toInbound(kind, c.Sender(), c.Chat(), c.Message())
		if !ok {
			return nil
		}
		handler(msg)
		return nil
	}
}

func toInbound(kind Kind, sender *tele.User, chat *tele.Chat, m *tele.Message) (InboundMessage, bool) {
	if sender == nil || chat == nil || m == nil {
		return InboundMessage{}, false
	}

	msg := InboundMessage{
		ChannelName:    "telegram",
		SenderID:       strconv.FormatInt(sender.ID, 10),
		SenderName:     strings.TrimSpace(sender.FirstName + " " + sender.LastName),
		SenderUsername: sender.Username,
		ChatID:         strconv.FormatInt(chat.ID, 10),
		Kind:           kind,
		Text:           m.Text,
		Timestamp:      time.Now(),
	}

	switch kind {
	case KindVoice:
		if m.Voice == nil {
			return InboundMessage{}, false
		}
		msg.Attachment = &Attachment{FileID: m.Voice.FileID, FileName: "voice.ogg", MIME: m.Voice.MIME, Size: int64(m.Voice.FileSize)}
	case KindPhoto:
		if m.Photo == nil {
			return InboundMessage{}, false
		}
		// telebot keeps the largest available size
		msg.Attachment = &Attachment{FileID: m.Photo.FileID, FileName: "photo.jpg", MIME: "image/jpeg", Size: int64(m.Photo.FileSize)}
	case KindDocument:
		if m.Document == nil {
			return InboundMessage{}, false
		}
		msg.Attachment = &Attachment{FileID: m.Document.FileID, FileName: m.Document.FileName, MIME: m.Document.MIME, Size: int64(m.Document.FileSize)}
	}
	if kind != KindText {
		msg.Text = m.Caption
	}
	return msg, true
}

func (t *TelegramChannel) Stop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil && t.running {
		t.bot.Stop()
		t.logger.Info("polling stopped")
	}
	t.running = false
	return nil
}

func (t *TelegramChannel) Send(_ context.Context, msg OutboundMessage) error {
	t.mu.Lock()
	bot := t.bot
	t.mu.Unlock()

	if bot == nil {
		return fmt.Errorf("telegram bot not started")
	}

	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}
	recipient := &tele.Chat{ID: chatID}

	switch {
	case msg.PhotoURL != "":
		_, err = bot.Send(recipient, &tele.Photo{File: tele.FromURL(msg.PhotoURL)})
	case len(msg.Voice) > 0:
		_, err = bot.Send(recipient, &tele.Voice{File: tele.FromReader(bytes.NewReader(msg.Voice)), MIME: "audio/ogg"})
	default:
		var opts []interface{}
		if msg.Markdown {
			opts = append(opts, tele.ModeMarkdown)
		}
		for _, chunk := range splitMessage(msg.Text, maxMessageRunes) {
			if _, err = bot.Send(recipient, chunk, opts...); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *TelegramChannel) Download(_ context.Context, att Attachment) (io.ReadCloser, error) {
	t.mu.Lock()
	bot := t.bot
	t.mu.Unlock()

	if bot == nil {
		return nil, fmt.Errorf("telegram bot not started")
	}
	rc, err := bot.File(&tele.File{FileID: att.FileID})
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	return rc, nil
}

func (t *TelegramChannel) OnMessage(handler func(InboundMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

func (t *TelegramChannel) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// splitMessage cuts text into chunks of at most n runes.
func splitMessage(text string, n int) []string {
	r := []rune(text)
	if len(r) == 0 {
		return []string{""}
	}
	var chunks []string
	for len(r) > 0 {
		end := n
		if end > len(r) {
			end = len(r)
		}
		chunks = append(chunks, string(r[:end]))
		r = r[end:]
	}
	return chunks
}
