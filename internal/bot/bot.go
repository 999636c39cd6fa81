package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assistbot/internal/channel"
	"assistbot/internal/document"
	"assistbot/internal/eventbus"
	"assistbot/internal/journal"
	"assistbot/internal/llm"
	"assistbot/internal/logging"
	"assistbot/internal/memory"
	"assistbot/internal/search"
	"assistbot/internal/security"
)

// ImageGenerator turns a prompt into an image URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer turns text into Opus audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// VisionDescriber describes an image.
type VisionDescriber interface {
	Describe(ctx context.Context, image []byte, prompt string) (string, error)
}

// Deps are the collaborators a Bot calls. Engines holds the engines
// reachable through /web keyed by name; only configured engines belong there.
type Deps struct {
	Memory      memory.Store
	Journal     journal.Recorder
	Chat        llm.Provider
	Images      ImageGenerator
	Speech      SpeechSynthesizer
	Transcriber Transcriber
	Vision      VisionDescriber
	Engines     map[string]search.Engine
	AutoSearch  search.Engine
	Documents   document.Extractor
	Auth        *security.Authorizer
	Shutdown    func()
	Bus         *eventbus.Bus
	Logger      *zap.Logger
	Redactor    *security.Redactor
}

// Options tune handler behaviour.
type Options struct {
	Locale       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	PDFPrefixLen int
	StagingDir   string // temp files for uploads; empty means os.TempDir
}

// Bot routes inbound messages to handlers and replies through the
// originating channel.
type Bot struct {
	deps     Deps
	opts     Options
	msgs     *Catalog
	keywords *KeywordSet
	logger   *zap.Logger
}

// New validates deps and creates a Bot.
func New(deps Deps, opts Options) (*Bot, error) {
	var missing []string
	if deps.Memory == nil {
		missing = append(missing, "memory")
	}
	if deps.Journal == nil {
		missing = append(missing, "journal")
	}
	if deps.Chat == nil {
		missing = append(missing, "chat provider")
	}
	if deps.Auth == nil {
		missing = append(missing, "authorizer")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("bot: missing dependencies %v", missing)
	}

	if deps.Bus == nil {
		deps.Bus = eventbus.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Shutdown == nil {
		deps.Shutdown = func() {}
	}
	if opts.PDFPrefixLen <= 0 {
		opts.PDFPrefixLen = 1000
	}

	msgs, keywords := CatalogFor(opts.Locale)
	return &Bot{
		deps:     deps,
		opts:     opts,
		msgs:     msgs,
		keywords: keywords,
		logger:   deps.Logger.Named("bot"),
	}, nil
}

// Start installs the bot as message handler on every channel of mgr.
func (b *Bot) Start(ctx context.Context, mgr *channel.Manager) {
	for name := range mgr.List() {
		ch, ok := mgr.Get(name)
		if !ok {
			continue
		}
		ch.OnMessage(func(msg channel.InboundMessage) {
			b.Handle(ctx, ch, msg)
		})
	}
	b.logger.Info("listening for messages")
}

// event carries per-message state through a handler.
type event struct {
	id     string
	msg    channel.InboundMessage
	ch     channel.Channel
	logger *zap.Logger
}

// Handle processes one inbound message. Panics are recovered so a failing
// event never affects others.
func (b *Bot) Handle(ctx context.Context, ch channel.Channel, msg channel.InboundMessage) {
	ev := &event{
		id:  uuid.NewString(),
		msg: msg,
		ch:  ch,
	}
	ev.logger = b.logger.With(
		zap.String("event_id", ev.id),
		zap.String("user_id", msg.SenderID),
		zap.String("channel", msg.ChannelName),
	)

	if !b.deps.Auth.IsAllowed(msg.SenderID) {
		ev.logger.Debug("sender not in allowlist")
		return
	}

	decision := Classify(msg, b.keywords)
	if decision.Route == RouteIgnore {
		return
	}
	ev.logger = ev.logger.With(zap.Stringer("route", decision.Route))
	b.deps.Bus.PublishRouted(eventbus.Routed{
		EventID: ev.id,
		UserID:  msg.SenderID,
		Route:   decision.Route.String(),
	})

	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			ev.logger.Error("handler panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
		b.finish(ev, decision.Route, time.Since(start), err)
	}()

	ev.logger.Debug("handling", zap.String("text", b.deps.Redactor.Redact(logging.Truncate(msg.Text, 100))))
	err = b.dispatch(ctx, ev, decision)
}

func (b *Bot) dispatch(ctx context.Context, ev *event, d Decision) error {
	switch d.Route {
	case RouteChat:
		return b.handleChat(ctx, ev, ev.msg.Text)
	case RouteAutoSearch:
		return b.handleAutoSearch(ctx, ev)
	case RouteReset:
		return b.handleReset(ctx, ev)
	case RouteWeb:
		return b.handleWeb(ctx, ev, d.Command)
	case RouteImage:
		return b.handleImage(ctx, ev, d.Command)
	case RouteTTS:
		return b.handleTTS(ctx, ev, d.Command)
	case RouteWhoAmI:
		return b.handleWhoAmI(ctx, ev)
	case RouteShutdown:
		return b.handleShutdown(ctx, ev)
	case RouteVoice:
		return b.handleVoice(ctx, ev)
	case RoutePhoto:
		return b.handlePhoto(ctx, ev)
	case RouteDocument:
		return b.handleDocument(ctx, ev)
	case RouteHelp:
		return b.reply(ctx, ev, b.msgs.Help)
	}
	return nil
}

func (b *Bot) finish(ev *event, route Route, elapsed time.Duration, err error) {
	outcome := eventbus.Outcome{
		EventID:  ev.id,
		UserID:   ev.msg.SenderID,
		Route:    route.String(),
		Duration: elapsed,
		Err:      err,
	}
	b.deps.Bus.PublishOutcome(outcome)
	if err == nil {
		ev.logger.Debug("handled", zap.Duration("elapsed", elapsed))
	}
}

// fail logs a provider failure, sends the locale apology and returns err.
func (b *Bot) fail(ctx context.Context, ev *event, apology string, err error) error {
	ev.logger.Error("provider call failed",
		zap.String("input", b.deps.Redactor.Redact(logging.Truncate(ev.msg.Text, 100))),
		zap.String("error", b.deps.Redactor.Redact(err.Error())),
	)
	if sendErr := b.reply(ctx, ev, apology); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

func (b *Bot) reply(ctx context.Context, ev *event, text string) error {
	return b.send(ctx, ev, channel.OutboundMessage{Text: text})
}

func (b *Bot) send(ctx context.Context, ev *event, out channel.OutboundMessage) error {
	out.ChatID = ev.msg.ChatID
	if err := ev.ch.Send(ctx, out); err != nil {
		ev.logger.Warn("send failed", zap.Error(err))
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
