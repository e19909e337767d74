package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
	"quiz-widget-service/internal/markup"
	"quiz-widget-service/internal/stats"
)

// ScoreReporter persists finished attempts and reads back their statistics.
type ScoreReporter interface {
	SaveScore(ctx context.Context, submission domain.ScoreSubmission) error
	Stats(ctx context.Context, quizID string) (domain.QuizStats, error)
}

// Result is what the learner sees after the last question.
type Result struct {
	Score      int               `json:"score"`
	Total      int               `json:"totalQuestions"`
	Percentage int               `json:"percentage"`
	Feedback   string            `json:"feedback"`
	Perfect    bool              `json:"perfect"`
	Saved      bool              `json:"saved"`
	Stats      *domain.QuizStats `json:"stats,omitempty"`
}

// Feedback is the encouragement line for a final percentage.
func Feedback(percentage int) string {
	switch {
	case percentage >= 80:
		return "Excellent! You've mastered this quiz!"
	case percentage >= 60:
		return "Good job! You're on the right track."
	case percentage >= 40:
		return "Not bad, but there's room for improvement."
	default:
		return "Keep practicing! You'll get better."
	}
}

// QuestionView is the rendered current question. Text fields hold escaped HTML.
type QuestionView struct {
	ID                     int               `json:"id"`
	Text                   string            `json:"text"`
	ExampleHTML            string            `json:"example,omitempty"`
	Options                []string          `json:"options"`
	Selection              *Selection        `json:"selection,omitempty"`
	CorrectIndex           int               `json:"correctIndex"`
	ExplanationHTML        string            `json:"explanation,omitempty"`
	ExampleExplanationHTML string            `json:"exampleExplanation,omitempty"`
	Presented              PresentedQuestion `json:"-"`
}

// PlayerView is a render-ready snapshot of a player.
type PlayerView struct {
	Status         Status        `json:"status"`
	LearnerID      string        `json:"learnerId"`
	QuizID         string        `json:"quizId,omitempty"`
	Topic          string        `json:"topic,omitempty"`
	Title          string        `json:"title,omitempty"`
	Description    string        `json:"description,omitempty"`
	EstimatedTime  string        `json:"time,omitempty"`
	Error          string        `json:"error,omitempty"`
	QuestionNumber int           `json:"questionNumber,omitempty"`
	TotalQuestions int           `json:"totalQuestions,omitempty"`
	Score          int           `json:"score"`
	Streak         int           `json:"streak"`
	Question       *QuestionView `json:"question,omitempty"`
	Celebration    Celebration   `json:"celebration,omitempty"`
	Result         *Result       `json:"result,omitempty"`
	ConfirmLeave   bool          `json:"confirmLeave"`
}

// PlayerOptions configures a Player.
type PlayerOptions struct {
	Reporter           ScoreReporter
	LearnerID          string
	CelebrationTimeout time.Duration
	Rand               *rand.Rand
	Logger             *logger.Logger
	// OnUpdate runs after a change the caller didn't trigger (a celebration expiring).
	OnUpdate func()
}

// Player binds a session to its question presenter, celebration timer and score
// reporting. It is the entry point UI shells drive.
type Player struct {
	mu           sync.Mutex
	session      *Session
	presenter    *Presenter
	celebrations *Celebrations
	reporter     ScoreReporter
	learnerID    string
	reported     bool
	result       *Result
	log          *logger.Logger
}

func NewPlayer(loader QuizLoader, opts PlayerOptions) *Player {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	learnerID := opts.LearnerID
	if learnerID == "" {
		learnerID = NewLearnerID()
	}
	p := &Player{
		session:   NewSession(loader, log),
		presenter: NewPresenter(opts.Rand),
		reporter:  opts.Reporter,
		learnerID: learnerID,
		log:       log.With("learnerId", learnerID),
	}
	onUpdate := opts.OnUpdate
	p.celebrations = NewCelebrations(opts.CelebrationTimeout, func(Celebration) {
		if onUpdate != nil {
			onUpdate()
		}
	})
	return p
}

// NewLearnerID returns an anonymous learner identifier.
func NewLearnerID() string {
	return "anon_" + uuid.NewString()
}

// LearnerID is the anonymous id attached to saved scores.
func (p *Player) LearnerID() string {
	return p.learnerID
}

// SelectQuiz loads a quiz and presents its first question.
func (p *Player) SelectQuiz(ctx context.Context, quizID, topic string) PlayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.session.State().Status {
	case StatusInProgress, StatusLoading:
		return p.viewLocked()
	}
	p.resetLocked()
	signals := p.session.Dispatch(ctx, SelectQuiz{QuizID: quizID, Topic: topic})
	p.handleLocked(ctx, signals)
	return p.viewLocked()
}

// Select picks an option by its shuffled position.
func (p *Player) Select(shuffledIndex int) (PlayerView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.State().Status != StatusInProgress {
		return p.viewLocked(), domain.ErrNotInProgress
	}
	_, err := p.presenter.Select(shuffledIndex)
	return p.viewLocked(), err
}

// Continue submits the pick to the session and advances to the next question.
func (p *Player) Continue(ctx context.Context) (PlayerView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.State().Status != StatusInProgress {
		return p.viewLocked(), domain.ErrNotInProgress
	}
	original, err := p.presenter.Continue()
	if err != nil {
		return p.viewLocked(), err
	}
	signals := p.session.Dispatch(ctx, SubmitAnswer{OriginalIndex: original})
	p.handleLocked(ctx, signals)
	return p.viewLocked(), nil
}

// Restart replays the loaded quiz from the first question.
func (p *Player) Restart(ctx context.Context) PlayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	p.handleLocked(ctx, p.session.Dispatch(ctx, Restart{}))
	return p.viewLocked()
}

// Leave discards the quiz. Callers confirm first when NeedsLeaveConfirmation is true.
func (p *Player) Leave(ctx context.Context) PlayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	p.session.Dispatch(ctx, Leave{})
	return p.viewLocked()
}

// NeedsLeaveConfirmation reports whether leaving would discard progress.
func (p *Player) NeedsLeaveConfirmation() bool {
	return NeedsLeaveConfirmation(p.session.State())
}

// View returns the current snapshot.
func (p *Player) View() PlayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// State exposes the underlying session state.
func (p *Player) State() State {
	return p.session.State()
}

// Close stops pending timers.
func (p *Player) Close() {
	p.celebrations.Stop()
}

func (p *Player) resetLocked() {
	p.presenter.Reset()
	p.celebrations.Clear()
	p.reported = false
	p.result = nil
}

func (p *Player) handleLocked(ctx context.Context, signals []Signal) {
	for _, sig := range signals {
		switch s := sig.(type) {
		case Celebrate:
			p.celebrations.Show(s.Kind)
		case PerfectScore:
			// One visible slot: this supersedes a streak milestone reached by the same answer.
			p.celebrations.Show(CelebrationPerfect)
			if p.result != nil {
				p.result.Perfect = true
			}
		case Completed:
			p.completeLocked(ctx, s)
		}
	}
	if q, ok := p.session.State().CurrentQuestion(); ok {
		p.presenter.Present(q)
	}
}

// completeLocked builds the result and reports the attempt once per completed view.
func (p *Player) completeLocked(ctx context.Context, done Completed) {
	pct := stats.Percentage(done.Score, done.Total)
	p.result = &Result{
		Score:      done.Score,
		Total:      done.Total,
		Percentage: pct,
		Feedback:   Feedback(pct),
	}
	if p.reported || p.reporter == nil {
		return
	}
	p.reported = true

	state := p.session.State()
	submission := domain.ScoreSubmission{
		QuizID:         state.QuizID,
		Score:          done.Score,
		TotalQuestions: done.Total,
		Topic:          state.Topic,
		AnonymousID:    p.learnerID,
	}
	if state.Quiz != nil {
		submission.QuizTitle = state.Quiz.Title
	}
	if err := p.reporter.SaveScore(ctx, submission); err != nil {
		p.log.Warn("save score failed", "quizId", state.QuizID, "error", err)
	} else {
		p.result.Saved = true
	}

	st, err := p.reporter.Stats(ctx, state.QuizID)
	if err != nil {
		p.log.Warn("fetch stats failed", "quizId", state.QuizID, "error", err)
		return
	}
	p.result.Stats = &st
}

func (p *Player) viewLocked() PlayerView {
	state := p.session.State()
	view := PlayerView{
		Status:       state.Status,
		LearnerID:    p.learnerID,
		QuizID:       state.QuizID,
		Topic:        state.Topic,
		Error:        state.Err,
		Score:        state.Score,
		Streak:       state.Streak,
		Celebration:  p.celebrations.Current(),
		ConfirmLeave: NeedsLeaveConfirmation(state),
	}
	if state.Quiz != nil {
		view.Title = state.Quiz.Title
		view.Description = state.Quiz.Description
		view.EstimatedTime = state.Quiz.EstimatedTime
		view.TotalQuestions = len(state.Quiz.Questions)
	}
	switch state.Status {
	case StatusInProgress:
		view.QuestionNumber = state.CurrentIndex + 1
		if presented, ok := p.presenter.Current(); ok {
			view.Question = p.questionViewLocked(presented)
		}
	case StatusCompleted:
		view.Result = p.result
	}
	return view
}

func (p *Player) questionViewLocked(presented PresentedQuestion) *QuestionView {
	q := presented.Question
	qv := &QuestionView{
		ID:           q.ID,
		Text:         markup.Parse(q.Text).HTML(),
		ExampleHTML:  markup.Parse(q.ExampleHTML).HTML(),
		Options:      make([]string, len(presented.Options)),
		CorrectIndex: -1,
		Presented:    presented,
	}
	for i, opt := range presented.Options {
		qv.Options[i] = markup.Parse(opt).HTML()
	}
	if sel, ok := p.presenter.Selection(); ok {
		qv.Selection = &sel
		qv.CorrectIndex = presented.ShuffledAnswerIndex
		if sel.ShowExplanation {
			qv.ExplanationHTML = markup.Parse(q.ExplanationHTML).HTML()
			qv.ExampleExplanationHTML = markup.Parse(q.ExampleExplanationHTML).HTML()
		}
	}
	return qv
}
