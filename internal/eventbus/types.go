package eventbus

import "time"

// Topic names a stream of bot lifecycle events.
type Topic string

const (
	TopicRouted  Topic = "routed"
	TopicHandled Topic = "handled"
	TopicError   Topic = "error"
)

// Event is a message passed through the event bus.
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// Handler processes an event.
type Handler func(Event)

// Routed is published once the router has classified an inbound event.
type Routed struct {
	EventID string
	UserID  string
	Route   string
}

// Outcome is published when an inbound event finishes processing.
type Outcome struct {
	EventID  string
	UserID   string
	Route    string
	Duration time.Duration
	Err      error
}

// Failed reports whether the event ended in an error.
func (o Outcome) Failed() bool { return o.Err != nil }
