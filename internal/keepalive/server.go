package keepalive

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Health is the /healthz response body.
type Health struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Channels      map[string]bool  `json:"channels"`
	Handled       int64            `json:"handled"`
	Failed        int64            `json:"failed"`
	InFlight      int64            `json:"in_flight"`
	Routes        map[string]int64 `json:"routes"`
}

// Server answers uptime probes from hosting platforms.
type Server struct {
	addr     string
	stats    *Stats
	channels func() map[string]bool
	logger   *zap.Logger
	started  time.Time
	now      func() time.Time
}

// New creates a keep-alive server. channels reports channel status and may be nil.
func New(addr string, stats *Stats, channels func() map[string]bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channels == nil {
		channels = func() map[string]bool { return nil }
	}
	return &Server{
		addr:     addr,
		stats:    stats,
		channels: channels,
		logger:   logger.Named("keepalive"),
		started:  time.Now(),
		now:      time.Now,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.alive)
	r.Get("/healthz", s.health)
	return r
}

func (s *Server) alive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("alive"))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body := Health{
		Status:        "ok",
		UptimeSeconds: int64(s.now().Sub(s.started).Seconds()),
		Channels:      s.channels(),
	}
	if s.stats != nil {
		c := s.stats.Snapshot()
		body.Handled, body.Failed, body.InFlight, body.Routes = c.Handled, c.Failed, c.InFlight, c.Routes
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("encode health", zap.Error(err))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", zap.Error(err))
		return err
	}
	s.logger.Info("stopped")
	return nil
}
