package keepalive

import (
	"sync"
	"sync/atomic"

	"assistbot/internal/eventbus"
)

// Counters is a point-in-time copy of Stats.
type Counters struct {
	Handled  int64
	Failed   int64
	InFlight int64
	Routes   map[string]int64
}

// Stats counts processed events, fed from the event bus.
type Stats struct {
	handled  atomic.Int64
	failed   atomic.Int64
	inFlight atomic.Int64

	mu      sync.Mutex
	byRoute map[string]int64
}

// NewStats subscribes a counter set to bus.
func NewStats(bus *eventbus.Bus) *Stats {
	s := &Stats{byRoute: make(map[string]int64)}
	bus.OnRouted(func(eventbus.Routed) { s.inFlight.Add(1) })
	bus.OnOutcome(s.observe)
	return s
}

func (s *Stats) observe(o eventbus.Outcome) {
	s.inFlight.Add(-1)
	if o.Failed() {
		s.failed.Add(1)
	} else {
		s.handled.Add(1)
	}
	s.mu.Lock()
	s.byRoute[o.Route]++
	s.mu.Unlock()
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	routes := make(map[string]int64, len(s.byRoute))
	for k, v := range s.byRoute {
		routes[k] = v
	}
	return Counters{
		Handled:  s.handled.Load(),
		Failed:   s.failed.Load(),
		InFlight: s.inFlight.Load(),
		Routes:   routes,
	}
}
