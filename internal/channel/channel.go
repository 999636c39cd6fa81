package channel

import (
	"context"
	"errors"
	"io"
	"time"
)

// Kind is the shape of an inbound event.
type Kind int

const (
	KindText Kind = iota
	KindVoice
	KindPhoto
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindVoice:
		return "voice"
	case KindPhoto:
		return "photo"
	case KindDocument:
		return "document"
	default:
		return "text"
	}
}

// Attachment references a file held by the messaging platform.
type Attachment struct {
	FileID   string
	FileName string
	MIME     string
	Size     int64
}

// InboundMessage is a message received from a channel.
type InboundMessage struct {
	ChannelName    string
	SenderID       string
	SenderName     string
	SenderUsername string
	ChatID         string
	Kind           Kind
	Text           string // message text or media caption
	Attachment     *Attachment
	Timestamp      time.Time
}

// OutboundMessage is a message to send through a channel. Exactly one of
// Text, PhotoURL or Voice is expected to be set.
type OutboundMessage struct {
	ChatID   string
	Text     string
	Markdown bool
	PhotoURL string
	Voice    []byte
}

// ErrUnsupported is returned by channels that cannot perform an operation.
var ErrUnsupported = errors.New("channel: operation not supported")

// Channel is the interface for messaging integrations.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg OutboundMessage) error
	// Download opens the content of an attachment. The caller closes it.
	Download(ctx context.Context, att Attachment) (io.ReadCloser, error)
	OnMessage(handler func(InboundMessage))
	IsRunning() bool
}
