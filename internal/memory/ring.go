package memory

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// history is a fixed-size ring of messages for one user.
type history struct {
	mu    sync.Mutex
	buf   []Message
	start int
	size  int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]Message, capacity)}
}

func (h *history) push(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = msg
		h.size++
		return
	}
	// full: overwrite the oldest slot and advance the head
	h.buf[h.start] = msg
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history) snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *history) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.buf)
	h.start = 0
	h.size = 0
}

// keyspace holds one history per user.
type keyspace interface {
	get(userID string) (*history, bool)
	add(userID string, h *history)
	len() int
}

type mapKeyspace map[string]*history

func (m mapKeyspace) get(userID string) (*history, bool) {
	h, ok := m[userID]
	return h, ok
}

func (m mapKeyspace) add(userID string, h *history) { m[userID] = h }
func (m mapKeyspace) len() int                      { return len(m) }

type lruKeyspace struct {
	cache *lru.Cache[string, *history]
}

func (l lruKeyspace) get(userID string) (*history, bool) { return l.cache.Get(userID) }
func (l lruKeyspace) add(userID string, h *history)      { l.cache.Add(userID, h) }
func (l lruKeyspace) len() int                           { return l.cache.Len() }

// RingStore implements Store in process memory. Nothing survives a restart.
type RingStore struct {
	mu       sync.Mutex
	capacity int
	users    keyspace
}

// Option configures a RingStore.
type Option func(*RingStore) error

// WithMaxUsers bounds the number of tracked users. When the bound is hit
// the least recently used user's history is dropped. Zero means unbounded.
func WithMaxUsers(n int) Option {
	return func(s *RingStore) error {
		if n <= 0 {
			return nil
		}
		cache, err := lru.New[string, *history](n)
		if err != nil {
			return err
		}
		s.users = lruKeyspace{cache: cache}
		return nil
	}
}

// NewRingStore creates a store that keeps at most capacity messages per user.
func NewRingStore(capacity int, opts ...Option) (*RingStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &RingStore{
		capacity: capacity,
		users:    mapKeyspace{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// entry returns the user's history, creating it on first access.
func (s *RingStore) entry(userID string) *history {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.users.get(userID); ok {
		return h
	}
	h := newHistory(s.capacity)
	s.users.add(userID, h)
	return h
}

func (s *RingStore) Append(userID string, role Role, content string) {
	s.entry(userID).push(Message{Role: role, Content: content})
}

func (s *RingStore) Read(userID string) []Message {
	return s.entry(userID).snapshot()
}

func (s *RingStore) Reset(userID string) {
	s.entry(userID).clear()
}

// Users returns the number of users currently tracked.
func (s *RingStore) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.len()
}

// Capacity returns the per-user message limit.
func (s *RingStore) Capacity() int { return s.capacity }
