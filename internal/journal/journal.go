package journal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Entry is one recorded chat exchange.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
}

// Recorder appends chat exchanges to durable storage.
// Entries are never modified or removed once written.
type Recorder interface {
	Record(ctx context.Context, userID, userMessage, botReply string) error
	Close() error
}

// TimeFormat is the on-disk timestamp layout (ISO-8601, UTC).
const TimeFormat = time.RFC3339Nano

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
)

// Open creates a recorder for the named backend.
func Open(backend, path string) (Recorder, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteJournal(path)
	case BackendJSONL:
		return NewJSONLJournal(path)
	default:
		return nil, fmt.Errorf("unknown journal backend: %s", backend)
	}
}

// clock hands out UTC timestamps that never go backwards, even if the
// wall clock is stepped. Callers hold their own write lock around stamp
// and the write so record order matches timestamp order.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newClock() *clock {
	return &clock{now: time.Now}
}

func (c *clock) stamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UTC()
	if ts.Before(c.last) {
		ts = c.last
	}
	c.last = ts
	return ts
}
