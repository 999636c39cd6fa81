package eventbus

import (
	"sync"
	"time"
)

// Bus fans bot lifecycle events out to in-process subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]Handler
	now      func() time.Time
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[Topic][]Handler),
		now:      time.Now,
	}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish delivers payload to the topic's subscribers synchronously, in
// registration order. Subscribers run on the publishing goroutine, so they
// must not block.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	event := Event{Topic: topic, Payload: payload, Timestamp: b.now()}
	for _, h := range handlers {
		h(event)
	}
}

// PublishRouted announces a classified event on TopicRouted.
func (b *Bus) PublishRouted(r Routed) {
	b.Publish(TopicRouted, r)
}

// PublishOutcome announces a finished event on TopicError when it failed
// and on TopicHandled otherwise.
func (b *Bus) PublishOutcome(o Outcome) {
	if o.Failed() {
		b.Publish(TopicError, o)
		return
	}
	b.Publish(TopicHandled, o)
}

// OnRouted subscribes fn to classified events.
func (b *Bus) OnRouted(fn func(Routed)) {
	b.Subscribe(TopicRouted, func(e Event) {
		if r, ok := e.Payload.(Routed); ok {
			fn(r)
		}
	})
}

// OnOutcome subscribes fn to finished events, successful or not.
func (b *Bus) OnOutcome(fn func(Outcome)) {
	h := func(e Event) {
		if o, ok := e.Payload.(Outcome); ok {
			fn(o)
		}
	}
	b.Subscribe(TopicHandled, h)
	b.Subscribe(TopicError, h)
}
