package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	calls int
	last  *ChatRequest
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) DefaultModel() string { return f.name + "-model" }
func (f *fakeProvider) Chat(_ context.Context, req *ChatRequest) (*LLMResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &LLMResponse{Content: f.reply}, nil
}

func TestFallbackOnRetryableError(t *testing.T) {
	primary := &fakeProvider{name: "a", err: &LLMError{Type: ErrorRateLimit, Message: "slow down"}}
	secondary := &fakeProvider{name: "b", reply: "from b"}
	f := NewFallbackProvider(nil, primary, secondary)

	resp, err := f.Chat(context.Background(), &ChatRequest{Model: "a-big"})
	require.NoError(t, err)
	assert.Equal(t, "from b", resp.Content)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "", secondary.last.Model, "fallback must not inherit the primary model")
	assert.Equal(t, "a+fallback", f.Name())
}

func TestFallbackStopsOnAuthError(t *testing.T) {
	primary := &fakeProvider{name: "a", err: &LLMError{Type: ErrorAuth, Message: "bad key"}}
	secondary := &fakeProvider{name: "b", reply: "from b"}
	f := NewFallbackProvider(nil, primary, secondary)

	_, err := f.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	_, err := Complete(context.Background(), &fakeProvider{name: "a"}, &ChatRequest{})
	var llmErr *LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorEmpty, llmErr.Type)

	reply, err := Complete(context.Background(), &fakeProvider{name: "a", reply: "ok"}, &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]ErrorType{
		401: ErrorAuth,
		403: ErrorAuth,
		429: ErrorRateLimit,
		400: ErrorInvalidInput,
		404: ErrorInvalidInput,
		500: ErrorServerError,
		529: ErrorServerError,
		200: ErrorUnknown,
	}
	for code, want := range cases {
		assert.Equal(t, want, classifyStatus(code), "status %d", code)
	}
	assert.Equal(t, ErrorTimeout, classifyMessage(context.DeadlineExceeded))
	assert.Equal(t, ErrorNetwork, classifyMessage(errors.New("dial tcp: connection refused")))
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
}

func TestOpenAIChat(t *testing.T) {
	var got map[string]any
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Ciao!"}}],
			"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)
	})

	resp, err := p.Chat(context.Background(), &ChatRequest{
		SystemPrompt: "be brief",
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "again"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ciao!", resp.Content)
	assert.Equal(t, 5, resp.Usage.InputTokens)
	assert.Equal(t, "gpt-4o", got["model"])
	assert.Len(t, got["messages"], 4)
}

func TestOpenAIAuthErrorIsClassified(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	_, err := p.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	var llmErr *LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorAuth, llmErr.Type)
}

func TestOpenAIGenerateImage(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dall-e-3", body["model"])
		assert.Equal(t, "1024x1024", body["size"])
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"created":0,"data":[{"url":"https://img.example/cat.png"}]}`)
	})

	url, err := p.GenerateImage(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/cat.png", url)
}

func TestOpenAISynthesize(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		w.Header().Set("Content-Type", "audio/ogg")
		w.Write([]byte("OggS-fake"))
	})

	audio, err := p.Synthesize(context.Background(), "ciao")
	require.NoError(t, err)
	assert.Equal(t, []byte("OggS-fake"), audio)
}
