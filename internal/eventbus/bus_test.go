package eventbus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub(t *testing.T) {
	bus := New()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var received []Event
	bus.Subscribe(TopicRouted, func(e Event) { received = append(received, e) })

	bus.Publish(TopicRouted, Routed{Route: "chat"})
	bus.Publish(TopicRouted, Routed{Route: "reset"})

	require.Len(t, received, 2)
	assert.Equal(t, Routed{Route: "chat"}, received[0].Payload)
	assert.Equal(t, Routed{Route: "reset"}, received[1].Payload)
	assert.Equal(t, TopicRouted, received[0].Topic)
	assert.Equal(t, fixed, received[0].Timestamp)
}

func TestMultipleSubscribersInOrder(t *testing.T) {
	bus := New()
	var order []int
	for i := 0; i < 3; i++ {
		bus.Subscribe(TopicError, func(Event) { order = append(order, i) })
	}

	bus.Publish(TopicError, Outcome{Route: "chat"})

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPublishOutcomeSelectsTopic(t *testing.T) {
	bus := New()
	var handled, failed []Outcome
	bus.Subscribe(TopicHandled, func(e Event) { handled = append(handled, e.Payload.(Outcome)) })
	bus.Subscribe(TopicError, func(e Event) { failed = append(failed, e.Payload.(Outcome)) })

	bus.PublishOutcome(Outcome{EventID: "e1", Route: "chat"})
	bus.PublishOutcome(Outcome{EventID: "e2", Route: "image", Err: errors.New("boom")})

	require.Len(t, handled, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "e1", handled[0].EventID)
	assert.Equal(t, "e2", failed[0].EventID)
	assert.True(t, failed[0].Failed())
}

func TestTypedSubscribers(t *testing.T) {
	bus := New()
	var routes []string
	var outcomes []Outcome
	bus.OnRouted(func(r Routed) { routes = append(routes, r.Route) })
	bus.OnOutcome(func(o Outcome) { outcomes = append(outcomes, o) })

	bus.PublishRouted(Routed{EventID: "e1", Route: "web"})
	bus.PublishOutcome(Outcome{EventID: "e1", Route: "web"})
	bus.PublishOutcome(Outcome{EventID: "e2", Route: "tts", Err: errors.New("x")})
	bus.Publish(TopicRouted, "not a Routed")

	assert.Equal(t, []string{"web"}, routes)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Failed())
	assert.True(t, outcomes[1].Failed())
}

func TestUnsubscribedTopic(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() { bus.PublishRouted(Routed{Route: "help"}) })
}
