package quiz

import (
	"context"
	"fmt"
	"sync"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

// LoadErrorMessage is shown to the learner when a quiz cannot be loaded.
const LoadErrorMessage = "Failed to load quiz. Please try again."

// Status is the session's position in its state machine.
type Status int

const (
	StatusNotStarted Status = iota
	StatusLoading
	StatusError
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusInProgress:
		return "inProgress"
	case StatusCompleted:
		return "completed"
	default:
		return "notStarted"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusNotStarted, StatusLoading, StatusError, StatusInProgress, StatusCompleted} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// State is a snapshot of one learner's progress through a quiz.
type State struct {
	Status       Status
	QuizID       string
	Topic        string
	Quiz         *domain.QuizDefinition
	CurrentIndex int
	Score        int
	Streak       int
	Err          string
}

// Total is the number of questions in the loaded quiz.
func (s State) Total() int {
	if s.Quiz == nil {
		return 0
	}
	return len(s.Quiz.Questions)
}

// CurrentQuestion returns the question awaiting an answer.
func (s State) CurrentQuestion() (domain.Question, bool) {
	if s.Status != StatusInProgress || s.Quiz == nil || s.CurrentIndex >= len(s.Quiz.Questions) {
		return domain.Question{}, false
	}
	return s.Quiz.Questions[s.CurrentIndex], true
}

// NeedsLeaveConfirmation reports whether leaving would throw away progress.
func NeedsLeaveConfirmation(s State) bool {
	return s.Status == StatusInProgress && (s.CurrentIndex > 0 || s.Score > 0)
}

// Event is an input to Reduce.
type Event interface{ isEvent() }

type (
	SelectQuiz struct {
		QuizID string
		Topic  string
	}
	QuizLoaded struct {
		QuizID string
		Quiz   domain.QuizDefinition
	}
	QuizLoadFailed struct {
		QuizID string
		Err    error
	}
	SubmitAnswer struct {
		OriginalIndex int
	}
	Restart struct{}
	Leave   struct{}
)

func (SelectQuiz) isEvent()     {}
func (QuizLoaded) isEvent()     {}
func (QuizLoadFailed) isEvent() {}
func (SubmitAnswer) isEvent()   {}
func (Restart) isEvent()        {}
func (Leave) isEvent()          {}

// Signal is an output of Reduce for the layer above.
type Signal interface{ isSignal() }

type (
	LoadRequested struct {
		QuizID string
		Topic  string
	}
	Celebrate struct {
		Kind Celebration
	}
	PerfectScore struct{}
	Completed    struct {
		Score int
		Total int
	}
)

func (LoadRequested) isSignal() {}
func (Celebrate) isSignal()     {}
func (PerfectScore) isSignal()  {}
func (Completed) isSignal()     {}

// Reduce is the session transition function. It never performs I/O.
func Reduce(state State, event Event) (State, []Signal) {
	switch ev := event.(type) {
	case SelectQuiz:
		switch state.Status {
		case StatusNotStarted, StatusCompleted, StatusError:
			next := State{Status: StatusLoading, QuizID: ev.QuizID, Topic: ev.Topic}
			return next, []Signal{LoadRequested{QuizID: ev.QuizID, Topic: ev.Topic}}
		}
		return state, nil

	case QuizLoaded:
		if state.Status != StatusLoading || state.QuizID != ev.QuizID {
			return state, nil
		}
		quiz := ev.Quiz
		return State{Status: StatusInProgress, QuizID: state.QuizID, Topic: state.Topic, Quiz: &quiz}, nil

	case QuizLoadFailed:
		if state.Status != StatusLoading || state.QuizID != ev.QuizID {
			return state, nil
		}
		return State{Status: StatusError, QuizID: state.QuizID, Topic: state.Topic, Err: LoadErrorMessage}, nil

	case SubmitAnswer:
		question, ok := state.CurrentQuestion()
		if !ok {
			return state, nil
		}
		var signals []Signal
		if ev.OriginalIndex == question.AnswerIndex {
			state.Score++
			state.Streak++
			if kind, ok := CelebrationFor(state.Streak); ok {
				signals = append(signals, Celebrate{Kind: kind})
			}
		} else {
			state.Streak = 0
		}
		state.CurrentIndex++
		if state.CurrentIndex == state.Total() {
			state.Status = StatusCompleted
			signals = append(signals, Completed{Score: state.Score, Total: state.Total()})
			if state.Score == state.Total() {
				signals = append(signals, PerfectScore{})
			}
		}
		return state, signals

	case Restart:
		if state.Status != StatusInProgress && state.Status != StatusCompleted {
			return state, nil
		}
		return State{Status: StatusInProgress, QuizID: state.QuizID, Topic: state.Topic, Quiz: state.Quiz}, nil

	case Leave:
		return State{}, nil
	}
	return state, nil
}

// QuizLoader is the catalog collaborator a session loads definitions from.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error)
}

// Session owns one learner's state and applies events to it in order.
type Session struct {
	mu     sync.Mutex
	state  State
	loader QuizLoader
	log    *logger.Logger
}

func NewSession(loader QuizLoader, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{loader: loader, log: log}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies event and any follow-up events it causes, returning the signals
// meant for the caller. Catalog loads run without holding the state lock.
func (s *Session) Dispatch(ctx context.Context, event Event) []Signal {
	var out []Signal
	queue := []Event{event}
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		s.mu.Lock()
		next, signals := Reduce(s.state, ev)
		s.state = next
		s.mu.Unlock()

		for _, sig := range signals {
			if req, ok := sig.(LoadRequested); ok {
				queue = append(queue, s.load(ctx, req))
				continue
			}
			out = append(out, sig)
		}
	}
	return out
}

func (s *Session) load(ctx context.Context, req LoadRequested) Event {
	def, err := s.loader.LoadQuiz(ctx, req.QuizID, req.Topic)
	if err == nil {
		err = def.Validate()
	}
	if err != nil {
		s.log.Warn("quiz load failed", "quizId", req.QuizID, "topic", req.Topic, "error", err)
		return QuizLoadFailed{QuizID: req.QuizID, Err: err}
	}
	return QuizLoaded{QuizID: req.QuizID, Quiz: def}
}
