package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/praxisnote/transcription/internal/speech"
)

// Manager tracks one Session per live connection and owns the shared
// collaborators every session needs.
type Manager struct {
	cfg        Config
	recognizer speech.Recognizer
	store      Store
	arbiter    SlotArbiter
	log        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerConfig struct {
	Config     Config
	Recognizer speech.Recognizer
	Store      Store
	Arbiter    SlotArbiter
	Logger     *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Arbiter == nil {
		cfg.Arbiter = NewMemoryArbiter()
	}

	return &Manager{
		cfg:        cfg.Config,
		recognizer: cfg.Recognizer,
		store:      cfg.Store,
		arbiter:    cfg.Arbiter,
		log:        cfg.Logger.With("component", "realtime_manager"),
		sessions:   make(map[string]*Session),
	}
}

// StartSession creates the recording session for one connection. Returns
// shared.ErrConflict if another live connection already records into the
// clinical session.
func (m *Manager) StartSession(ctx context.Context, sessionID, connID, userID string, notifier Notifier) (*Session, error) {
	s, err := newSession(ctx, SessionParams{
		SessionID:  sessionID,
		ConnID:     connID,
		UserID:     userID,
		Config:     m.cfg,
		Recognizer: m.recognizer,
		Store:      m.store,
		Arbiter:    m.arbiter,
		Notifier:   notifier,
		Logger:     m.log,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[connID] = s
	m.mu.Unlock()

	m.log.Info("recording session started", "session_id", sessionID, "conn_id", connID, "user_id", userID)
	return s, nil
}

func (m *Manager) GetSession(connID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[connID]
	return s, ok
}

// RemoveSession drops the bookkeeping entry once the session's run loop has
// finished.
func (m *Manager) RemoveSession(connID string) {
	m.mu.Lock()
	delete(m.sessions, connID)
	m.mu.Unlock()
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close disconnects every live session and waits for each to finalize.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Disconnect()
		<-s.Done()
	}
	return nil
}
