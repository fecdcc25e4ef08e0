package session

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/metrics"
)

var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMaxSessionsReached is returned when the manager is full.
	ErrMaxSessionsReached = errors.New("maximum sessions reached")

	// ErrManagerStopped is returned after Stop.
	ErrManagerStopped = errors.New("session manager stopped")

	// ErrSessionClosed is returned by Apply on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// ManagerConfig configures the session manager.
type ManagerConfig struct {
	// MaxSessions is the maximum number of live sessions.
	// Default: 1000.
	MaxSessions int

	// IdleTimeout closes sessions that have not applied a patch for this
	// long. Holders of a closed session are told through Session.Done.
	// Zero disables idle cleanup.
	// Default: 10 minutes.
	IdleTimeout time.Duration

	// CleanupInterval is how often idle sessions are looked for.
	// Default: 1 minute.
	CleanupInterval time.Duration

	// ContainerTag is the tag of each session's root container.
	// Default: "div".
	ContainerTag string

	// Assertions enables protocol checks in every session's patcher.
	Assertions bool
}

// DefaultManagerConfig returns a ManagerConfig with sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxSessions:     1000,
		IdleTimeout:     10 * time.Minute,
		CleanupInterval: time.Minute,
		ContainerTag:    "div",
		Assertions:      true,
	}
}

// Manager owns the live sessions of a server.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   ManagerConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
	base     *slog.Logger

	now     func() time.Time
	done    chan struct{}
	stopped bool
}

// NewManager creates a manager. m may be nil.
func NewManager(config ManagerConfig, m *metrics.Metrics, logger *slog.Logger) *Manager {
	def := DefaultManagerConfig()
	if config.MaxSessions <= 0 {
		config.MaxSessions = def.MaxSessions
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.ContainerTag == "" {
		config.ContainerTag = def.ContainerTag
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		config:   config,
		metrics:  m,
		logger:   logger.With("component", "session_manager"),
		base:     logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Create starts a new session with an empty container.
func (m *Manager) Create(opts ...Option) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil, ErrManagerStopped
	}
	if len(m.sessions) >= m.config.MaxSessions {
		m.logger.Warn("session limit reached", "max", m.config.MaxSessions)
		return nil, ErrMaxSessionsReached
	}

	base := []Option{
		WithLogger(m.base),
		WithMetrics(m.metrics),
		WithAssertions(m.config.Assertions),
	}
	s := New(dom.NewContainer(m.config.ContainerTag), append(base, opts...)...)
	if _, dup := m.sessions[s.ID]; dup {
		return nil, errors.New("duplicate session id " + s.ID)
	}
	m.sessions[s.ID] = s
	m.metrics.SessionOpened()
	m.logger.Debug("session created", "session_id", s.ID)
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close removes and closes a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	m.remove(id, "closed")
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the live session IDs, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseIdle closes every session idle for longer than IdleTimeout and
// returns how many were closed.
func (m *Manager) CloseIdle() int {
	if m.config.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.config.IdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	closed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			m.remove(id, "idle")
			closed++
		}
	}
	return closed
}

// Start runs idle cleanup until Stop is called.
func (m *Manager) Start() {
	go m.cleanupLoop()
}

// Stop ends the cleanup loop and closes all sessions.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	close(m.done)
	for id := range m.sessions {
		m.remove(id, "shutdown")
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.CloseIdle(); n > 0 {
				m.logger.Info("closed idle sessions", "count", n)
			}
		}
	}
}

// remove must be called with mu held.
func (m *Manager) remove(id, reason string) {
	m.sessions[id].Close()
	delete(m.sessions, id)
	m.metrics.SessionClosed()
	m.logger.Debug("session removed", "session_id", id, "reason", reason)
}
