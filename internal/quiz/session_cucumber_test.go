//go:build cucumber

package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"quiz-widget-service/internal/domain"
)

// TestSessionScenarios runs the session feature scenarios against Reduce.
func TestSessionScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-session",
		ScenarioInitializer: InitializeSessionScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "session.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeSessionScenario wires steps for session scenarios.
func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	s := &sessionScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.reset()
		return ctx, nil
	})

	ctx.Step(`^a quiz "([^"]+)" with (\d+) questions$`, s.givenQuiz)
	ctx.Step(`^the learner selects quiz "([^"]+)"$`, s.whenSelect)
	ctx.Step(`^the quiz finishes loading$`, s.whenLoaded)
	ctx.Step(`^quiz "([^"]+)" finishes loading$`, s.whenOtherLoaded)
	ctx.Step(`^the quiz fails to load$`, s.whenLoadFails)
	ctx.Step(`^the learner answers (.+)$`, s.whenAnswers)
	ctx.Step(`^the learner restarts$`, s.whenRestart)
	ctx.Step(`^the learner leaves$`, s.whenLeave)
	ctx.Step(`^the session is completed with score (\d+) of (\d+)$`, s.thenCompleted)
	ctx.Step(`^the session is in progress at question (\d+)$`, s.thenInProgressAt)
	ctx.Step(`^the session is loading$`, s.thenStatus(StatusLoading))
	ctx.Step(`^the session is not started$`, s.thenStatus(StatusNotStarted))
	ctx.Step(`^the session shows the load error$`, s.thenLoadError)
	ctx.Step(`^the streak is (\d+)$`, s.thenStreak)
	ctx.Step(`^the score is (\d+)$`, s.thenScore)
	ctx.Step(`^a "([^"]+)" celebration is signalled$`, s.thenCelebration)
	ctx.Step(`^a perfect score is signalled$`, s.thenPerfect)
	ctx.Step(`^leaving needs confirmation$`, s.thenNeedsConfirmation)
}

type sessionScenarioState struct {
	quiz    domain.QuizDefinition
	state   State
	signals []Signal
}

func (s *sessionScenarioState) reset() {
	*s = sessionScenarioState{}
}

func (s *sessionScenarioState) dispatch(ev Event) {
	next, signals := Reduce(s.state, ev)
	s.state = next
	s.signals = append(s.signals, signals...)
}

func (s *sessionScenarioState) givenQuiz(id string, n int) error {
	s.quiz = domain.QuizDefinition{ID: id, Title: "Quiz " + id}
	for i := 0; i < n; i++ {
		s.quiz.Questions = append(s.quiz.Questions, domain.Question{
			ID:          i + 1,
			Text:        fmt.Sprintf("Question %d", i+1),
			Options:     []string{"right", "wrong"},
			AnswerIndex: 0,
		})
	}
	return nil
}

func (s *sessionScenarioState) whenSelect(id string) error {
	s.dispatch(SelectQuiz{QuizID: id, Topic: "react"})
	return nil
}

func (s *sessionScenarioState) whenLoaded() error {
	s.dispatch(QuizLoaded{QuizID: s.quiz.ID, Quiz: s.quiz})
	return nil
}

func (s *sessionScenarioState) whenOtherLoaded(id string) error {
	s.dispatch(QuizLoaded{QuizID: id, Quiz: s.quiz})
	return nil
}

func (s *sessionScenarioState) whenLoadFails() error {
	s.dispatch(QuizLoadFailed{QuizID: s.quiz.ID, Err: errors.New("unreachable")})
	return nil
}

func (s *sessionScenarioState) whenAnswers(list string) error {
	for _, answer := range strings.Split(list, ",") {
		switch strings.TrimSpace(answer) {
		case "correct":
			s.dispatch(SubmitAnswer{OriginalIndex: 0})
		case "wrong":
			s.dispatch(SubmitAnswer{OriginalIndex: 1})
		default:
			return fmt.Errorf("unknown answer %q", answer)
		}
	}
	return nil
}

func (s *sessionScenarioState) whenRestart() error {
	s.dispatch(Restart{})
	return nil
}

func (s *sessionScenarioState) whenLeave() error {
	s.dispatch(Leave{})
	return nil
}

func (s *sessionScenarioState) thenCompleted(score, total int) error {
	if s.state.Status != StatusCompleted {
		return fmt.Errorf("expected completed, got %s", s.state.Status)
	}
	for _, sig := range s.signals {
		if done, ok := sig.(Completed); ok {
			if done.Score != score || done.Total != total {
				return fmt.Errorf("expected %d of %d, got %d of %d", score, total, done.Score, done.Total)
			}
			return nil
		}
	}
	return fmt.Errorf("no completion signalled")
}

func (s *sessionScenarioState) thenInProgressAt(number int) error {
	if s.state.Status != StatusInProgress {
		return fmt.Errorf("expected in progress, got %s", s.state.Status)
	}
	if s.state.CurrentIndex+1 != number {
		return fmt.Errorf("expected question %d, got %d", number, s.state.CurrentIndex+1)
	}
	return nil
}

func (s *sessionScenarioState) thenStatus(want Status) func() error {
	return func() error {
		if s.state.Status != want {
			return fmt.Errorf("expected %s, got %s", want, s.state.Status)
		}
		return nil
	}
}

func (s *sessionScenarioState) thenLoadError() error {
	if s.state.Status != StatusError || s.state.Err != LoadErrorMessage {
		return fmt.Errorf("expected load error, got %s %q", s.state.Status, s.state.Err)
	}
	return nil
}

func (s *sessionScenarioState) thenStreak(n int) error {
	if s.state.Streak != n {
		return fmt.Errorf("expected streak %d, got %d", n, s.state.Streak)
	}
	return nil
}

func (s *sessionScenarioState) thenScore(n int) error {
	if s.state.Score != n {
		return fmt.Errorf("expected score %d, got %d", n, s.state.Score)
	}
	return nil
}

func (s *sessionScenarioState) thenCelebration(kind string) error {
	for _, sig := range s.signals {
		if c, ok := sig.(Celebrate); ok && string(c.Kind) == kind {
			return nil
		}
	}
	return fmt.Errorf("no %s celebration in %v", kind, s.signals)
}

func (s *sessionScenarioState) thenPerfect() error {
	for _, sig := range s.signals {
		if _, ok := sig.(PerfectScore); ok {
			return nil
		}
	}
	return fmt.Errorf("no perfect score signalled")
}

func (s *sessionScenarioState) thenNeedsConfirmation() error {
	if !NeedsLeaveConfirmation(s.state) {
		return fmt.Errorf("expected leave confirmation at question %d", s.state.CurrentIndex+1)
	}
	return nil
}
