package channel

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{""}, splitMessage("", 5))
	assert.Equal(t, []string{"ciao"}, splitMessage("ciao", 5))
	assert.Equal(t, []string{"perch", "é sì"}, splitMessage("perché sì", 5))

	long := strings.Repeat("à", 9001)
	chunks := splitMessage(long, maxMessageRunes)
	require.Len(t, chunks, 3)
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestToInboundText(t *testing.T) {
	sender := &tele.User{ID: 42, FirstName: "Ada", LastName: "L", Username: "ada"}
	chat := &tele.Chat{ID: -100}

	msg, ok := toInbound(KindText, sender, chat, &tele.Message{Text: "/web brave meteo"})
	require.True(t, ok)
	assert.Equal(t, "42", msg.SenderID)
	assert.Equal(t, "-100", msg.ChatID)
	assert.Equal(t, "Ada L", msg.SenderName)
	assert.Equal(t, "ada", msg.SenderUsername)
	assert.Equal(t, "/web brave meteo", msg.Text)
	assert.Nil(t, msg.Attachment)
}

func TestToInboundDocument(t *testing.T) {
	sender := &tele.User{ID: 7}
	chat := &tele.Chat{ID: 7}
	m := &tele.Message{
		Caption:  "leggi",
		Document: &tele.Document{File: tele.File{FileID: "doc-1"}, FileName: "report.pdf", MIME: "application/pdf"},
	}

	msg, ok := toInbound(KindDocument, sender, chat, m)
	require.True(t, ok)
	assert.Equal(t, KindDocument, msg.Kind)
	assert.Equal(t, "leggi", msg.Text)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "doc-1", msg.Attachment.FileID)
	assert.Equal(t, "report.pdf", msg.Attachment.FileName)
}

func TestToInboundMissingPayload(t *testing.T) {
	_, ok := toInbound(KindVoice, &tele.User{ID: 1}, &tele.Chat{ID: 1}, &tele.Message{})
	assert.False(t, ok)

	_, ok = toInbound(KindText, nil, &tele.Chat{ID: 1}, &tele.Message{})
	assert.False(t, ok)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleChannel(t *testing.T) {
	out := &lockedBuffer{}
	ch := NewConsoleChannelIO("99", strings.NewReader("ciao\n\n  /whoami  \n"), out)

	received := make(chan InboundMessage, 4)
	ch.OnMessage(func(m InboundMessage) { received <- m })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, ch.Start(ctx))
	assert.True(t, ch.IsRunning())

	var got []string
	for len(got) < 2 {
		select {
		case m := <-received:
			assert.Equal(t, "99", m.SenderID)
			got = append(got, m.Text)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for console input")
		}
	}
	assert.Equal(t, []string{"ciao", "/whoami"}, got)

	require.NoError(t, ch.Send(ctx, OutboundMessage{Text: "risposta"}))
	require.NoError(t, ch.Send(ctx, OutboundMessage{PhotoURL: "https://img"}))
	assert.Contains(t, out.String(), "risposta\n")
	assert.Contains(t, out.String(), "[image] https://img")

	_, err := ch.Download(ctx, Attachment{FileID: "x"})
	assert.ErrorIs(t, err, ErrUnsupported)

	require.NoError(t, ch.Stop(ctx))
	assert.False(t, ch.IsRunning())
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(nil)
	ch := NewConsoleChannelIO("1", strings.NewReader(""), &lockedBuffer{})
	m.Register(ch)

	got, ok := m.Get("console")
	require.True(t, ok)
	assert.Same(t, ch, got)

	require.NoError(t, m.StartAll(context.Background()))
	assert.Equal(t, map[string]bool{"console": true}, m.List())

	m.StopAll(context.Background())
	assert.Equal(t, map[string]bool{"console": false}, m.List())
}
