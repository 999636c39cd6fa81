package channel

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager manages the lifecycle of all channels.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	logger   *zap.Logger
}

// NewManager creates a new channel manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		channels: make(map[string]Channel),
		logger:   logger.Named("channel"),
	}
}

// Register adds a channel to the manager.
func (m *Manager) Register(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
}

// OnMessage installs handler on every registered channel.
func (m *Manager) OnMessage(handler func(InboundMessage)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.channels {
		ch.OnMessage(handler)
	}
}

// StartAll starts all registered channels.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			m.logger.Error("start failed", zap.String("channel", name), zap.Error(err))
			return fmt.Errorf("start %s: %w", name, err)
		}
		m.logger.Info("started", zap.String("channel", name))
	}
	return nil
}

// StopAll stops all running channels.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, ch := range m.channels {
		if !ch.IsRunning() {
			continue
		}
		if err := ch.Stop(ctx); err != nil {
			m.logger.Warn("stop failed", zap.String("channel", name), zap.Error(err))
		} else {
			m.logger.Info("stopped", zap.String("channel", name))
		}
	}
}

// Get returns a channel by name.
func (m *Manager) Get(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// List returns all channel names and their running status.
func (m *Manager) List() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]bool, len(m.channels))
	for name, ch := range m.channels {
		result[name] = ch.IsRunning()
	}
	return result
}
