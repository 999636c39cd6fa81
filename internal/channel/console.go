package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ConsoleChannel is a debug channel that reads lines from an input stream
// and prints replies to an output stream. Only text is supported.
type ConsoleChannel struct {
	mu       sync.Mutex
	in       io.Reader
	out      io.Writer
	senderID string
	handler  func(InboundMessage)
	running  bool
	cancel   context.CancelFunc
}

// NewConsoleChannel creates a console channel on stdin/stdout. Messages are
// attributed to senderID so allowlist and admin checks behave as on Telegram.
func NewConsoleChannel(senderID string) *ConsoleChannel {
	return NewConsoleChannelIO(senderID, os.Stdin, os.Stdout)
}

// NewConsoleChannelIO creates a console channel on arbitrary streams.
func NewConsoleChannelIO(senderID string, in io.Reader, out io.Writer) *ConsoleChannel {
	if senderID == "" {
		senderID = "local"
	}
	return &ConsoleChannel{in: in, out: out, senderID: senderID}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	go c.readLoop(ctx)
	return nil
}

func (c *ConsoleChannel) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	return nil
}

func (c *ConsoleChannel) Send(_ context.Context, msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case msg.PhotoURL != "":
		_, err := fmt.Fprintf(c.out, "[image] %s\n", msg.PhotoURL)
		return err
	case len(msg.Voice) > 0:
		_, err := fmt.Fprintf(c.out, "[voice] %d bytes\n", len(msg.Voice))
		return err
	default:
		_, err := fmt.Fprintf(c.out, "%s\n", msg.Text)
		return err
	}
}

func (c *ConsoleChannel) Download(_ context.Context, _ Attachment) (io.ReadCloser, error) {
	return nil, ErrUnsupported
}

func (c *ConsoleChannel) OnMessage(handler func(InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *ConsoleChannel) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *ConsoleChannel) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()

		if handler != nil {
			handler(InboundMessage{
				ChannelName:    "console",
				SenderID:       c.senderID,
				SenderName:     "console",
				SenderUsername: "console",
				ChatID:         "console",
				Kind:           KindText,
				Text:           text,
				Timestamp:      time.Now(),
			})
		}
	}
}
