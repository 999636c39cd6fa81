package keepalive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistbot/internal/eventbus"
)

func TestAlive(t *testing.T) {
	srv := New(":0", nil, nil, nil)
	rr := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alive", rr.Body.String())
}

func TestHealthReportsCounters(t *testing.T) {
	bus := eventbus.New()
	stats := NewStats(bus)
	for _, route := range []string{"chat", "chat", "image", "web"} {
		bus.PublishRouted(eventbus.Routed{Route: route})
	}
	bus.PublishOutcome(eventbus.Outcome{Route: "chat"})
	bus.PublishOutcome(eventbus.Outcome{Route: "chat"})
	bus.PublishOutcome(eventbus.Outcome{Route: "image", Err: errors.New("x")})

	srv := New(":0", stats, func() map[string]bool { return map[string]bool{"telegram": true} }, nil)
	srv.now = func() time.Time { return srv.started.Add(90 * time.Second) }

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, int64(90), body.UptimeSeconds)
	assert.Equal(t, map[string]bool{"telegram": true}, body.Channels)
	assert.Equal(t, int64(2), body.Handled)
	assert.Equal(t, int64(1), body.Failed)
	assert.Equal(t, int64(1), body.InFlight, "the web event is still running")
	assert.Equal(t, map[string]int64{"chat": 2, "image": 1}, body.Routes)
}

func TestUnknownPath(t *testing.T) {
	rr := httptest.NewRecorder()
	New(":0", nil, nil, nil).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New("", nil, nil, nil).Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "alive", string(data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
