// Package session tracks independent conversations, each with its own
// orchestrator and history.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/example/tablebook/agent/contract"
	orchestratorx "github.com/example/tablebook/agent/orchestrator"
)

// Session is one conversation. Messages within a session are processed
// one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	orch *orchestratorx.Orchestrator
}

func (s *Session) HandleMessage(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.HandleMessage(ctx, text)
}

func (s *Session) History() []contractx.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.History()
}

// Config carries session limits, loaded from the environment.
type Config struct {
	MaxSessions int `envconfig:"MAX_SESSIONS" default:"100"`
}

// Manager creates and looks up sessions. Safe for concurrent use.
type Manager struct {
	newOrchestrator func() (*orchestratorx.Orchestrator, error)
	maxSessions     int

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(newOrchestrator func() (*orchestratorx.Orchestrator, error), cfg Config) (*Manager, error) {
	if newOrchestrator == nil {
		return nil, errors.New("orchestrator factory is required")
	}
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 100
	}
	return &Manager{
		newOrchestrator: newOrchestrator,
		maxSessions:     maxSessions,
		sessions:        make(map[string]*Session),
	}, nil
}

func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSessions {
		return nil, errors.New("maximum sessions reached")
	}
	orch, err := m.newOrchestrator()
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		orch:      orch,
	}
	m.sessions[s.ID] = s
	log.Info().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
