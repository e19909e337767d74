package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/quiz"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Players live in a local map; timers and the load lock cannot leave the process.
//   - Each Save writes the player's view to quiz:session:{id} with a TTL, so other
//     instances and operators can see who is mid-quiz.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*quiz.Player
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	s.snapshot(sessionID, player)
	return player
}

func (s *SessionStore) Get(sessionID string) (*quiz.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.sessions[sessionID]
	return player, ok
}

func (s *SessionStore) Save(sessionID string, player *quiz.Player) {
	s.snapshot(sessionID, player)
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Snapshot returns the last view written for a session, from any instance.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (quiz.PlayerView, bool, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return quiz.PlayerView{}, false, nil
	}
	if err != nil {
		return quiz.PlayerView{}, false, err
	}
	var view quiz.PlayerView
	if err := json.Unmarshal(raw, &view); err != nil {
		return quiz.PlayerView{}, false, err
	}
	return view, true, nil
}

// snapshot is best-effort.
func (s *SessionStore) snapshot(sessionID string, player *quiz.Player) {
	payload, err := json.Marshal(player.View())
	if err != nil {
		return
	}
	_ = s.client.Set(context.Background(), s.key(sessionID), payload, s.ttl).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
