package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/queue"
)

// Manager is an in-memory registry of active study sessions, keyed by
// session ID. Sessions are evicted when they complete or are abandoned;
// nothing about a session survives a process restart by design.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*StudySession

	committer Committer
	params    *srs.Params
	logger    *slog.Logger

	sweeperDone chan struct{}
	sweeperWG   sync.WaitGroup
}

// NewManager creates a session manager that builds sessions around the
// given committer. If logger is nil, a default logger will be used.
func NewManager(committer Committer, params *srs.Params, logger *slog.Logger) *Manager {
	if committer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("committer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		sessions:  make(map[uuid.UUID]*StudySession),
		committer: committer,
		params:    params,
		logger:    logger.With(slog.String("component", "session_manager")),
	}
}

// Start creates and registers a new session over the given due queue.
func (m *Manager) Start(userID uuid.UUID, entries []queue.DueEntry) (*StudySession, error) {
	sess, err := New(userID, entries, m.committer, m.params)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()

	m.logger.Debug("study session started",
		slog.String("session_id", sess.ID().String()),
		slog.String("user_id", userID.String()),
		slog.Int("queue_length", len(entries)))

	return sess, nil
}

// Get returns the session with the given ID, owned by the given user.
// Sessions are private: asking for another user's session reads as not
// found rather than forbidden.
func (m *Manager) Get(id, userID uuid.UUID) (*StudySession, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || sess.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Evict removes a session from the registry. Called after completion or
// abandonment; evicting an unknown ID is a no-op.
func (m *Manager) Evict(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Active returns the number of registered sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep abandons and evicts sessions started more than maxAge ago. Clients
// that walk away mid-session never tell the server, so the registry would
// grow without bound otherwise. Returns the number of sessions evicted.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	m.mu.Lock()
	var stale []*StudySession
	for _, sess := range m.sessions {
		if sess.StartedAt().Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	for _, sess := range stale {
		delete(m.sessions, sess.ID())
	}
	m.mu.Unlock()

	for _, sess := range stale {
		// Terminal sessions report ErrTerminal here; they are already
		// evicted, which is all the sweep needs.
		if err := sess.Abandon(); err == nil {
			m.logger.Info("stale session abandoned",
				slog.String("session_id", sess.ID().String()),
				slog.String("user_id", sess.UserID().String()))
		}
	}

	return len(stale)
}

// StartSweeper launches a background goroutine that periodically sweeps
// stale sessions. Call StopSweeper during shutdown. Starting an already
// started sweeper is a no-op.
func (m *Manager) StartSweeper(interval, maxAge time.Duration) {
	m.mu.Lock()
	if m.sweeperDone != nil {
		m.mu.Unlock()
		return
	}
	done := make(chan struct{})
	m.sweeperDone = done
	m.mu.Unlock()

	m.sweeperWG.Add(1)
	go func() {
		defer m.sweeperWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if evicted := m.Sweep(maxAge); evicted > 0 {
					m.logger.Debug("session sweep completed",
						slog.Int("evicted", evicted))
				}
			case <-done:
				return
			}
		}
	}()

	m.logger.Info("session sweeper started",
		slog.Duration("interval", interval),
		slog.Duration("max_age", maxAge))
}

// StopSweeper stops the background sweeper and waits for it to exit.
// Safe to call when the sweeper was never started.
func (m *Manager) StopSweeper() {
	m.mu.Lock()
	done := m.sweeperDone
	m.sweeperDone = nil
	m.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	m.sweeperWG.Wait()
}
