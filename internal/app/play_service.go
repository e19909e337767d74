package app

import (
	"context"
	"sync"
	"time"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
	"quiz-widget-service/internal/quiz"
)

// PlayService runs quiz players keyed by explicit session ids and fans their views out
// to subscribers.
type PlayService struct {
	sessions           SessionRepository
	loader             quiz.QuizLoader
	reporter           quiz.ScoreReporter
	celebrationTimeout time.Duration
	log                *logger.Logger

	mu          sync.Mutex
	subscribers map[string]map[chan quiz.PlayerView]struct{}
}

func NewPlayService(sessions SessionRepository, loader quiz.QuizLoader, reporter quiz.ScoreReporter, celebrationTimeout time.Duration, log *logger.Logger) *PlayService {
	if log == nil {
		log = logger.Nop()
	}
	return &PlayService{
		sessions:           sessions,
		loader:             loader,
		reporter:           reporter,
		celebrationTimeout: celebrationTimeout,
		log:                log,
		subscribers:        make(map[string]map[chan quiz.PlayerView]struct{}),
	}
}

// Join returns the session's current view, creating the session on first use.
func (s *PlayService) Join(_ context.Context, sessionID string) quiz.PlayerView {
	player := s.sessions.GetOrCreate(sessionID, s.newPlayer)
	return player.View()
}

func (s *PlayService) newPlayer(sessionID string) *quiz.Player {
	return quiz.NewPlayer(s.loader, quiz.PlayerOptions{
		Reporter:           s.reporter,
		CelebrationTimeout: s.celebrationTimeout,
		Logger:             s.log.With("sessionId", sessionID),
		OnUpdate:           func() { s.publish(sessionID) },
	})
}

// SelectQuiz starts a quiz in the session.
func (s *PlayService) SelectQuiz(ctx context.Context, sessionID, quizID, topic string) (quiz.PlayerView, error) {
	return s.apply(sessionID, func(p *quiz.Player) (quiz.PlayerView, error) {
		return p.SelectQuiz(ctx, quizID, topic), nil
	})
}

// SelectOption picks an option on the current question.
func (s *PlayService) SelectOption(_ context.Context, sessionID string, index int) (quiz.PlayerView, error) {
	return s.apply(sessionID, func(p *quiz.Player) (quiz.PlayerView, error) {
		return p.Select(index)
	})
}

// Continue submits the pick and advances.
func (s *PlayService) Continue(ctx context.Context, sessionID string) (quiz.PlayerView, error) {
	return s.apply(sessionID, func(p *quiz.Player) (quiz.PlayerView, error) {
		return p.Continue(ctx)
	})
}

// Restart replays the session's quiz.
func (s *PlayService) Restart(ctx context.Context, sessionID string) (quiz.PlayerView, error) {
	return s.apply(sessionID, func(p *quiz.Player) (quiz.PlayerView, error) {
		return p.Restart(ctx), nil
	})
}

// Leave discards the session's quiz; the session itself stays open.
func (s *PlayService) Leave(ctx context.Context, sessionID string) (quiz.PlayerView, error) {
	return s.apply(sessionID, func(p *quiz.Player) (quiz.PlayerView, error) {
		return p.Leave(ctx), nil
	})
}

func (s *PlayService) apply(sessionID string, op func(*quiz.Player) (quiz.PlayerView, error)) (quiz.PlayerView, error) {
	player, ok := s.sessions.Get(sessionID)
	if !ok {
		return quiz.PlayerView{}, domain.ErrSessionNotFound
	}
	view, err := op(player)
	if err != nil {
		return view, err
	}
	s.sessions.Save(sessionID, player)
	s.broadcast(sessionID, view)
	return view, nil
}

// Subscribe returns a channel that receives view updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *PlayService) Subscribe(_ context.Context, sessionID string) (<-chan quiz.PlayerView, func(), error) {
	player, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch := make(chan quiz.PlayerView, 8)

	s.mu.Lock()
	subs, ok := s.subscribers[sessionID]
	if !ok {
		subs = make(map[chan quiz.PlayerView]struct{})
		s.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	ch <- player.View()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, sessionID)
			}
		}
	}
	return ch, cancel, nil
}

// End drops the session once nobody is subscribed to it any more.
func (s *PlayService) End(_ context.Context, sessionID string) {
	s.mu.Lock()
	_, watched := s.subscribers[sessionID]
	s.mu.Unlock()
	if watched {
		return
	}
	if player, ok := s.sessions.Get(sessionID); ok {
		player.Close()
	}
	s.sessions.Delete(sessionID)
}

func (s *PlayService) publish(sessionID string) {
	player, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.broadcast(sessionID, player.View())
}

func (s *PlayService) broadcast(sessionID string, view quiz.PlayerView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[sessionID] {
		select {
		case ch <- view:
		default:
			// Drop the oldest pending view so a slow reader never blocks play.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}
