package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/stats"
)

type fakeReporter struct {
	saved    []domain.ScoreSubmission
	statsErr error
	saveErr  error
}

func (r *fakeReporter) SaveScore(_ context.Context, s domain.ScoreSubmission) error {
	r.saved = append(r.saved, s)
	return r.saveErr
}

func (r *fakeReporter) Stats(_ context.Context, quizID string) (domain.QuizStats, error) {
	if r.statsErr != nil {
		return domain.QuizStats{}, r.statsErr
	}
	recs := make([]domain.ScoreRecord, 0, len(r.saved))
	for _, s := range r.saved {
		recs = append(recs, domain.ScoreRecord{QuizID: s.QuizID, Percentage: stats.Percentage(s.Score, s.TotalQuestions)})
	}
	return stats.Aggregate(quizID, recs), nil
}

func newTestPlayer(n int, reporter ScoreReporter) *Player {
	return NewPlayer(newStubLoader(n), PlayerOptions{
		Reporter:           reporter,
		LearnerID:          "anon_test",
		CelebrationTimeout: time.Minute,
		Rand:               rand.New(rand.NewSource(42)),
	})
}

// answer picks the correct or a wrong option on the current question and continues.
func answer(t *testing.T, p *Player, correct bool) PlayerView {
	t.Helper()
	view := p.View()
	if view.Question == nil {
		t.Fatalf("no question presented (status %s)", view.Status)
	}
	idx := view.Question.Presented.ShuffledAnswerIndex
	if !correct {
		idx = (idx + 1) % len(view.Question.Options)
	}
	if _, err := p.Select(idx); err != nil {
		t.Fatalf("select: %v", err)
	}
	view, err := p.Continue(context.Background())
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	return view
}

func TestPlayerFullRunReportsOnce(t *testing.T) {
	reporter := &fakeReporter{}
	p := newTestPlayer(4, reporter)
	defer p.Close()

	view := p.SelectQuiz(context.Background(), "quiz-1", "react")
	if view.Status != StatusInProgress || view.QuestionNumber != 1 || view.TotalQuestions != 4 {
		t.Fatalf("unexpected initial view %+v", view)
	}

	answer(t, p, true)
	answer(t, p, false)
	answer(t, p, true)
	view = answer(t, p, true)

	if view.Status != StatusCompleted || view.Result == nil {
		t.Fatalf("expected completed view with result, got %+v", view)
	}
	if view.Result.Score != 3 || view.Result.Percentage != 75 || !view.Result.Saved {
		t.Fatalf("unexpected result %+v", view.Result)
	}
	if view.Result.Stats == nil || view.Result.Stats.TotalAttempts != 1 {
		t.Fatalf("expected stats with one attempt, got %+v", view.Result.Stats)
	}
	if view.Result.Feedback != Feedback(75) {
		t.Fatalf("unexpected feedback %q", view.Result.Feedback)
	}

	p.View()
	p.View()
	if len(reporter.saved) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(reporter.saved))
	}
	sub := reporter.saved[0]
	if sub.QuizID != "quiz-1" || sub.Topic != "react" || sub.QuizTitle != "Sample" || sub.AnonymousID != "anon_test" {
		t.Fatalf("unexpected submission %+v", sub)
	}
}

func TestPlayerRestartAllowsAnotherReport(t *testing.T) {
	reporter := &fakeReporter{}
	p := newTestPlayer(1, reporter)
	defer p.Close()
	ctx := context.Background()

	p.SelectQuiz(ctx, "quiz-1", "")
	view := answer(t, p, true)
	if view.Result == nil || !view.Result.Perfect || view.Celebration != CelebrationPerfect {
		t.Fatalf("expected perfect celebration, got %+v", view)
	}

	view = p.Restart(ctx)
	if view.Status != StatusInProgress || view.Score != 0 || view.Celebration != CelebrationNone {
		t.Fatalf("unexpected view after restart %+v", view)
	}
	answer(t, p, false)
	if len(reporter.saved) != 2 {
		t.Fatalf("expected second attempt to be reported, got %d", len(reporter.saved))
	}
}

func TestPlayerSwallowsReportingFailures(t *testing.T) {
	reporter := &fakeReporter{saveErr: errors.New("disk full"), statsErr: errors.New("offline")}
	p := newTestPlayer(1, reporter)
	defer p.Close()

	p.SelectQuiz(context.Background(), "quiz-1", "")
	view := answer(t, p, true)
	if view.Status != StatusCompleted || view.Result == nil {
		t.Fatalf("expected result despite failures, got %+v", view)
	}
	if view.Result.Saved || view.Result.Stats != nil {
		t.Fatalf("expected unsaved result without stats, got %+v", view.Result)
	}
}

func TestPlayerStreakCelebration(t *testing.T) {
	p := newTestPlayer(6, nil)
	defer p.Close()
	p.SelectQuiz(context.Background(), "quiz-1", "")
	var view PlayerView
	for i := 0; i < 5; i++ {
		view = answer(t, p, true)
	}
	if view.Streak != 5 || view.Celebration != CelebrationBasic {
		t.Fatalf("expected basic celebration at streak 5, got %+v", view)
	}
}

func TestPerfectScoreSupersedesFinalStreakCelebration(t *testing.T) {
	p := newTestPlayer(5, nil)
	defer p.Close()
	p.SelectQuiz(context.Background(), "quiz-1", "")
	var view PlayerView
	for i := 0; i < 5; i++ {
		view = answer(t, p, true)
	}
	if view.Status != StatusCompleted || view.Streak != 5 {
		t.Fatalf("expected completed run with streak 5, got %+v", view)
	}
	if view.Celebration != CelebrationPerfect || !view.Result.Perfect {
		t.Fatalf("expected perfect celebration to replace the streak one, got %s", view.Celebration)
	}
}

func TestPlayerSelectRequiresActiveQuiz(t *testing.T) {
	p := newTestPlayer(1, nil)
	defer p.Close()
	if _, err := p.Select(0); !errors.Is(err, domain.ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if _, err := p.Continue(context.Background()); !errors.Is(err, domain.ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}

func TestPlayerLoadErrorAndLeave(t *testing.T) {
	p := newTestPlayer(2, nil)
	defer p.Close()
	ctx := context.Background()

	view := p.SelectQuiz(ctx, "nope", "")
	if view.Status != StatusError || view.Error != LoadErrorMessage {
		t.Fatalf("expected error view, got %+v", view)
	}
	view = p.SelectQuiz(ctx, "quiz-1", "")
	answer(t, p, true)
	if !p.NeedsLeaveConfirmation() {
		t.Fatalf("expected leave confirmation with progress")
	}
	view = p.Leave(ctx)
	if view.Status != StatusNotStarted || view.QuizID != "" {
		t.Fatalf("expected reset view, got %+v", view)
	}
}

func TestPlayerWrongAnswerShowsExplanation(t *testing.T) {
	quiz := makeQuiz(1)
	quiz.Questions[0].ExplanationHTML = "Use `key` props"
	p := NewPlayer(&stubLoader{quizzes: map[string]domain.QuizDefinition{"quiz-1": quiz}}, PlayerOptions{})
	defer p.Close()

	view := p.SelectQuiz(context.Background(), "quiz-1", "")
	wrong := (view.Question.Presented.ShuffledAnswerIndex + 1) % 3
	view, err := p.Select(wrong)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	q := view.Question
	if q.Selection == nil || q.Selection.Correct || q.CorrectIndex != q.Presented.ShuffledAnswerIndex {
		t.Fatalf("expected revealed wrong selection, got %+v", q)
	}
	want := `Use <code class="quiz-inline-code">key</code> props`
	if q.ExplanationHTML != want {
		t.Fatalf("expected explanation %q, got %q", want, q.ExplanationHTML)
	}
}
