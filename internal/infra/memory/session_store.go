package memory

import (
	"sync"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/quiz"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*quiz.Player
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*quiz.Player),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, factory app.PlayerFactory) *quiz.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player, ok := s.sessions[sessionID]; ok {
		return player
	}
	player := factory(sessionID)
	s.sessions[sessionID] = player
	return player
}

func (s *SessionStore) Get(sessionID string) (*quiz.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.sessions[sessionID]
	return player, ok
}

// Save is a no-op: players are held by pointer.
func (s *SessionStore) Save(string, *quiz.Player) {}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
