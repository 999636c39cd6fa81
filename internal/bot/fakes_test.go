package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"assistbot/internal/channel"
	"assistbot/internal/llm"
	"assistbot/internal/search"
)

type fakeChannel struct {
	mu        sync.Mutex
	sent      []channel.OutboundMessage
	files     map[string][]byte
	downloads int
	sendErr   error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{files: make(map[string][]byte)}
}

func (f *fakeChannel) Name() string                           { return "fake" }
func (f *fakeChannel) Start(context.Context) error            { return nil }
func (f *fakeChannel) Stop(context.Context) error             { return nil }
func (f *fakeChannel) OnMessage(func(channel.InboundMessage)) {}
func (f *fakeChannel) IsRunning() bool                        { return true }

func (f *fakeChannel) Send(_ context.Context, msg channel.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.sendErr
}

func (f *fakeChannel) Download(_ context.Context, att channel.Attachment) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	data, ok := f.files[att.FileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeChannel) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.Text != "" {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []*llm.ChatRequest
}

func (f *fakeProvider) Chat(_ context.Context, req *llm.ChatRequest) (*llm.LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.LLMResponse{Content: f.reply}, nil
}

func (f *fakeProvider) Name() string         { return "fake" }
func (f *fakeProvider) DefaultModel() string { return "fake-model" }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type journalEntry struct {
	userID, userMessage, botReply string
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []journalEntry
	err     error
}

func (f *fakeJournal) Record(_ context.Context, userID, userMessage, botReply string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, journalEntry{userID, userMessage, botReply})
	return nil
}

func (f *fakeJournal) Close() error { return nil }

func (f *fakeJournal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeEngine struct {
	name    string
	results []search.Result
	err     error
	queries []string
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Search(_ context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeMedia struct {
	imageURL    string
	audio       []byte
	transcript  string
	description string
	err         error

	imageCalls, speechCalls, transcribeCalls, describeCalls int
	lastPrompt                                              string
}

func (f *fakeMedia) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.imageCalls++
	f.lastPrompt = prompt
	return f.imageURL, f.err
}

func (f *fakeMedia) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.speechCalls++
	f.lastPrompt = text
	return f.audio, f.err
}

func (f *fakeMedia) Transcribe(_ context.Context, audio []byte, filename string) (string, error) {
	f.transcribeCalls++
	return f.transcript, f.err
}

func (f *fakeMedia) Describe(_ context.Context, image []byte, prompt string) (string, error) {
	f.describeCalls++
	f.lastPrompt = prompt
	return f.description, f.err
}

// fakeExtractor records the staged path and whether it existed during extraction.
type fakeExtractor struct {
	text    string
	err     error
	path    string
	existed bool
}

func (f *fakeExtractor) ExtractText(path string) (string, error) {
	f.path = path
	_, err := os.Stat(path)
	f.existed = err == nil
	return f.text, f.err
}
