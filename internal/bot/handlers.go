package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"assistbot/internal/channel"
	"assistbot/internal/document"
	"assistbot/internal/llm"
	"assistbot/internal/memory"
	"assistbot/internal/search"
)

// maxDownloadBytes matches the Bot API download limit.
const maxDownloadBytes = 20 << 20

var engineTitles = map[string]string{
	"brave":      "Brave",
	"serp":       "SerpAPI",
	"duckduckgo": "DuckDuckGo",
}

// webEngines are the names /web accepts.
var webEngines = map[string]bool{"brave": true, "serp": true}

func engineTitle(name string) string {
	if t, ok := engineTitles[name]; ok {
		return t
	}
	return name
}

func (b *Bot) handleChat(ctx context.Context, ev *event, text string) error {
	userID := ev.msg.SenderID
	history := b.deps.Memory.Read(userID)

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: string(memory.RoleUser), Content: text})

	reply, err := llm.Complete(ctx, b.deps.Chat, &llm.ChatRequest{
		Messages:     messages,
		MaxTokens:    b.opts.MaxTokens,
		Temperature:  b.opts.Temperature,
		SystemPrompt: b.opts.SystemPrompt,
	})
	if err != nil {
		return b.fail(ctx, ev, b.msgs.ChatFailed, err)
	}

	if err := b.reply(ctx, ev, reply); err != nil {
		return err
	}

	b.deps.Memory.Append(userID, memory.RoleUser, text)
	b.deps.Memory.Append(userID, memory.RoleAssistant, reply)

	if err := b.deps.Journal.Record(ctx, userID, text, reply); err != nil {
		ev.logger.Warn("journal write failed", zap.Error(err))
	}
	return nil
}

func (b *Bot) handleAutoSearch(ctx context.Context, ev *event) error {
	if b.deps.AutoSearch == nil {
		return b.handleChat(ctx, ev, ev.msg.Text)
	}
	if err := b.reply(ctx, ev, b.msgs.Searching); err != nil {
		return err
	}
	return b.search(ctx, ev, b.deps.AutoSearch, ev.msg.Text)
}

func (b *Bot) search(ctx context.Context, ev *event, engine search.Engine, query string) error {
	results, err := engine.Search(ctx, query)
	if errors.Is(err, search.ErrNoResults) {
		return b.reply(ctx, ev, b.msgs.NoResults(engineTitle(engine.Name())))
	}
	if err != nil {
		return b.fail(ctx, ev, b.msgs.SearchFailed, fmt.Errorf("%s search: %w", engine.Name(), err))
	}
	return b.reply(ctx, ev, search.Format(results))
}

func (b *Bot) handleReset(ctx context.Context, ev *event) error {
	b.deps.Memory.Reset(ev.msg.SenderID)
	return b.reply(ctx, ev, b.msgs.MemoryReset)
}

func (b *Bot) handleWeb(ctx context.Context, ev *event, cmd Command) error {
	if len(cmd.Args) < 2 {
		return b.reply(ctx, ev, b.msgs.WebUsage)
	}
	name := strings.ToLower(cmd.Args[0])
	query := strings.Join(cmd.Args[1:], " ")

	if !webEngines[name] {
		return b.reply(ctx, ev, b.msgs.UnknownEngine)
	}
	engine, ok := b.deps.Engines[name]
	if !ok {
		return b.reply(ctx, ev, b.msgs.EngineNotConfigured)
	}

	if err := b.reply(ctx, ev, b.msgs.WebNotice(query, engineTitle(name))); err != nil {
		return err
	}
	return b.search(ctx, ev, engine, query)
}

func (b *Bot) handleImage(ctx context.Context, ev *event, cmd Command) error {
	prompt := cmd.Payload()
	if prompt == "" {
		return b.reply(ctx, ev, b.msgs.ImageUsage)
	}
	if b.deps.Images == nil {
		return b.reply(ctx, ev, b.msgs.NotConfigured)
	}

	url, err := b.deps.Images.GenerateImage(ctx, prompt)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.ImageFailed, err)
	}
	return b.send(ctx, ev, channel.OutboundMessage{PhotoURL: url})
}

func (b *Bot) handleTTS(ctx context.Context, ev *event, cmd Command) error {
	text := cmd.Payload()
	if text == "" {
		return b.reply(ctx, ev, b.msgs.TTSUsage)
	}
	if b.deps.Speech == nil {
		return b.reply(ctx, ev, b.msgs.NotConfigured)
	}

	audio, err := b.deps.Speech.Synthesize(ctx, text)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.TTSFailed, err)
	}
	return b.send(ctx, ev, channel.OutboundMessage{Voice: audio})
}

func (b *Bot) handleWhoAmI(ctx context.Context, ev *event) error {
	return b.send(ctx, ev, channel.OutboundMessage{
		Text:     b.msgs.WhoAmI(ev.msg.SenderID, ev.msg.SenderUsername),
		Markdown: true,
	})
}

func (b *Bot) handleShutdown(ctx context.Context, ev *event) error {
	if !b.deps.Auth.IsAdmin(ev.msg.SenderID) {
		ev.logger.Warn("shutdown denied")
		return b.reply(ctx, ev, b.msgs.AccessDenied)
	}

	ev.logger.Info("shutdown requested by admin")
	err := b.reply(ctx, ev, b.msgs.Goodbye)
	b.deps.Shutdown()
	return err
}

func (b *Bot) handleVoice(ctx context.Context, ev *event) error {
	if b.deps.Transcriber == nil {
		return b.reply(ctx, ev, b.msgs.NotConfigured)
	}
	att := *ev.msg.Attachment

	audio, err := b.download(ctx, ev, att)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.VoiceFailed, err)
	}
	transcript, err := b.deps.Transcriber.Transcribe(ctx, audio, att.FileName)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.VoiceFailed, err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return b.reply(ctx, ev, b.msgs.VoiceFailed)
	}

	if err := b.handleChat(ctx, ev, transcript); err != nil {
		b.deps.Memory.Append(ev.msg.SenderID, memory.RoleUser, transcript)
		return err
	}
	return nil
}

func (b *Bot) handlePhoto(ctx context.Context, ev *event) error {
	if b.deps.Vision == nil {
		return b.reply(ctx, ev, b.msgs.NotConfigured)
	}

	image, err := b.download(ctx, ev, *ev.msg.Attachment)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.PhotoFailed, err)
	}
	description, err := b.deps.Vision.Describe(ctx, image, b.msgs.VisionPrompt)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.PhotoFailed, err)
	}
	return b.reply(ctx, ev, description)
}

func (b *Bot) handleDocument(ctx context.Context, ev *event) error {
	att := *ev.msg.Attachment
	if !document.IsPDF(att.FileName) {
		return b.reply(ctx, ev, b.msgs.PDFOnly)
	}
	if b.deps.Documents == nil {
		return b.reply(ctx, ev, b.msgs.NotConfigured)
	}

	path, err := b.stage(ctx, ev, att)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.PDFFailed, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			ev.logger.Warn("remove staged file", zap.String("path", path), zap.Error(err))
		}
	}()

	text, err := b.deps.Documents.ExtractText(path)
	if err != nil {
		return b.fail(ctx, ev, b.msgs.PDFFailed, err)
	}

	b.deps.Memory.Append(ev.msg.SenderID, memory.RoleUser,
		"[PDF CONTENT]\n"+document.Prefix(text, b.opts.PDFPrefixLen))
	return b.reply(ctx, ev, b.msgs.PDFReceived)
}

// download reads an attachment fully into memory.
func (b *Bot) download(ctx context.Context, ev *event, att channel.Attachment) ([]byte, error) {
	rc, err := ev.ch.Download(ctx, att)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return data, nil
}

// stage copies an attachment into a uniquely named temp file. On error no
// file is left behind.
func (b *Bot) stage(ctx context.Context, ev *event, att channel.Attachment) (string, error) {
	rc, err := ev.ch.Download(ctx, att)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	f, err := os.CreateTemp(b.opts.StagingDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	_, copyErr := io.Copy(f, io.LimitReader(rc, maxDownloadBytes))
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage attachment: %w", err)
	}
	return f.Name(), nil
}
