package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"assistbot/internal/bot"
	"assistbot/internal/channel"
	"assistbot/internal/config"
	"assistbot/internal/document"
	"assistbot/internal/eventbus"
	"assistbot/internal/journal"
	"assistbot/internal/keepalive"
	"assistbot/internal/llm"
	"assistbot/internal/logging"
	"assistbot/internal/memory"
	"assistbot/internal/search"
	"assistbot/internal/security"
)

// Key-store entry names for each credential.
const (
	secretTelegramToken = "telegram_token"
	secretOpenAIKey     = "openai_api_key"
	secretAnthropicKey  = "anthropic_api_key"
	secretBraveKey      = "brave_api_key"
	secretSerpKey       = "serpapi_api_key"
)

// secretNames lists the names accepted by the secret commands.
var secretNames = []string{secretTelegramToken, secretOpenAIKey, secretAnthropicKey, secretBraveKey, secretSerpKey}

func secretFields(cfg *config.Config) map[string]*string {
	return map[string]*string{
		secretTelegramToken: &cfg.Telegram.Token,
		secretOpenAIKey:     &cfg.LLM.OpenAIAPIKey,
		secretAnthropicKey:  &cfg.LLM.AnthropicAPIKey,
		secretBraveKey:      &cfg.Search.BraveAPIKey,
		secretSerpKey:       &cfg.Search.SerpAPIKey,
	}
}

type secretResolver interface {
	Resolve(name, value string) (string, error)
}

// resolveSecrets replaces [keyring] placeholders with stored secrets. A
// placeholder with no stored secret becomes empty so that Validate reports it.
func resolveSecrets(cfg *config.Config, r secretResolver) error {
	var errs []error
	for name, field := range secretFields(cfg) {
		v, err := r.Resolve(name, *field)
		switch {
		case errors.Is(err, security.ErrSecretNotFound):
			*field = ""
		case err != nil:
			errs = append(errs, err)
		default:
			*field = v
		}
	}
	return errors.Join(errs...)
}

// selectAutoEngine picks the engine used for keyword-triggered searches.
func selectAutoEngine(cfg config.SearchConfig, engines map[string]search.Engine, keyless search.Engine, logger *zap.Logger) search.Engine {
	switch cfg.AutoEngine {
	case "duckduckgo":
		return keyless
	case "":
	default:
		if e, ok := engines[cfg.AutoEngine]; ok {
			return e
		}
		logger.Warn("auto-search engine has no API key, using duckduckgo", zap.String("engine", cfg.AutoEngine))
		return keyless
	}
	for _, name := range []string{"brave", "serp"} {
		if e, ok := engines[name]; ok {
			return e
		}
	}
	return keyless
}

// App owns every long-lived component.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	bus     *eventbus.Bus
	journal journal.Recorder
	chanMgr *channel.Manager
	bot     *bot.Bot
	alive   *keepalive.Server
	cancel  context.CancelFunc
}

type runOptions struct {
	configPath string
	console    bool
}

// loadConfig reads configuration and resolves key-store placeholders.
func loadConfig(path string) (*config.Config, *config.Loader, *security.KeyStore, error) {
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	ks, err := security.NewKeyStore(cfg.DataDir, os.Getenv("VAULT_PASSWORD"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("key store: %w", err)
	}
	if err := resolveSecrets(cfg, ks); err != nil {
		return nil, nil, nil, err
	}
	return cfg, loader, ks, nil
}

// validate runs config validation. The console channel needs no Telegram token.
func validate(cfg *config.Config, console bool) error {
	err := cfg.Validate()
	var verr *config.ValidationError
	if !console || !errors.As(err, &verr) {
		return err
	}
	missing := verr.Missing[:0]
	for _, m := range verr.Missing {
		if m != "TELEGRAM_TOKEN" {
			missing = append(missing, m)
		}
	}
	verr.Missing = missing
	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}

// NewApp builds the application from a validated config.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, console bool) (*App, context.Context, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		cfg:    cfg,
		logger: logger,
		bus:    eventbus.New(),
		cancel: cancel,
	}

	mem, err := memory.NewRingStore(memory.DefaultCapacity, memory.WithMaxUsers(cfg.Memory.MaxUsers))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("memory: %w", err)
	}

	rec, err := journal.Open(cfg.Journal.Backend, cfg.Journal.Path)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("journal: %w", err)
	}
	a.journal = rec

	openaiProvider := llm.NewOpenAIFromConfig(cfg.LLM, cfg.Media)
	chat, err := llm.NewProvider(cfg.LLM, openaiProvider, logger)
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	searchOpts := search.Options{
		MaxResults: cfg.Search.MaxResults,
		Timeout:    time.Duration(cfg.Search.TimeoutSecs) * time.Second,
	}
	engines := make(map[string]search.Engine)
	if cfg.Search.BraveAPIKey != "" {
		engines["brave"] = search.NewBrave(cfg.Search.BraveAPIKey, searchOpts)
	}
	if cfg.Search.SerpAPIKey != "" {
		engines["serp"] = search.NewSerp(cfg.Search.SerpAPIKey, searchOpts)
	}
	auto := selectAutoEngine(cfg.Search, engines, search.NewDuckDuckGo(searchOpts), logger)

	redactor := security.NewRedactor([]string{
		cfg.Telegram.Token, cfg.LLM.OpenAIAPIKey, cfg.LLM.AnthropicAPIKey,
		cfg.Search.BraveAPIKey, cfg.Search.SerpAPIKey,
	}, cfg.Log.RedactPII)

	a.chanMgr = channel.NewManager(logger)
	if console {
		a.chanMgr.Register(channel.NewConsoleChannel(cfg.Bot.AdminID))
	} else {
		a.chanMgr.Register(channel.NewTelegramChannel(channel.TelegramConfig{
			Token:       cfg.Telegram.Token,
			PollTimeout: time.Duration(cfg.Telegram.PollTimeout) * time.Second,
			Logger:      logger,
			Redactor:    redactor,
		}))
	}

	a.bot, err = bot.New(bot.Deps{
		Memory:      mem,
		Journal:     rec,
		Chat:        chat,
		Images:      openaiProvider,
		Speech:      openaiProvider,
		Transcriber: openaiProvider,
		Vision:      openaiProvider,
		Engines:     engines,
		AutoSearch:  auto,
		Documents:   document.NewPDFExtractor(),
		Auth:        security.NewAuthorizer(cfg.Telegram.AllowedIDs, cfg.Bot.AdminID),
		Shutdown:    cancel,
		Bus:         a.bus,
		Logger:      logger,
		Redactor:    redactor,
	}, bot.Options{
		Locale:       cfg.Bot.Locale,
		SystemPrompt: cfg.Bot.SystemPrompt,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		PDFPrefixLen: cfg.Bot.PDFPrefixLen,
		StagingDir:   cfg.Bot.StagingDir,
	})
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	if cfg.KeepAlive.Addr != "" && cfg.KeepAlive.Addr != "off" {
		a.alive = keepalive.New(cfg.KeepAlive.Addr, keepalive.NewStats(a.bus), a.chanMgr.List, logger)
	}

	logger.Info("app initialised",
		zap.String("chat_provider", chat.Name()),
		zap.String("auto_search", auto.Name()),
		zap.Int("web_engines", len(engines)),
		zap.String("journal", cfg.Journal.Backend),
		zap.Bool("console", console),
	)
	return a, ctx, nil
}

// Run starts every channel and blocks until ctx is cancelled, either by a
// signal or by the admin /shutdown command. In-flight handlers are not awaited.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.bot.Start(ctx, a.chanMgr)
	if err := a.chanMgr.StartAll(ctx); err != nil {
		return err
	}

	if a.alive != nil {
		go func() {
			if err := a.alive.Run(ctx); err != nil {
				a.logger.Error("keep-alive server failed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	a.logger.Info("shutting down")
	a.chanMgr.StopAll(context.Background())
	return nil
}

// Close releases resources. It is safe to call more than once.
func (a *App) Close() {
	a.cancel()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("close journal", zap.Error(err))
		}
		a.journal = nil
	}
}

func runBot(ctx context.Context, opts runOptions) error {
	cfg, _, _, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := validate(cfg, opts.console); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, ctx, err := NewApp(ctx, cfg, logger, opts.console)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
