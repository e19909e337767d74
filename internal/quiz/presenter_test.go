package quiz

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"quiz-widget-service/internal/domain"
)

func TestPresentIsBijection(t *testing.T) {
	q := domain.Question{ID: 1, Text: "Pick", Options: []string{"a", "b", "c", "d", "e"}, AnswerIndex: 3}
	for seed := int64(0); seed < 50; seed++ {
		p := NewPresenter(rand.New(rand.NewSource(seed)))
		pq := p.Present(q)

		seen := make([]bool, len(q.Options))
		for i, orig := range pq.OriginalIndices {
			if seen[orig] {
				t.Fatalf("seed %d: original index %d used twice", seed, orig)
			}
			seen[orig] = true
			if pq.Options[i] != q.Options[orig] {
				t.Fatalf("seed %d: option %d is %q, want %q", seed, i, pq.Options[i], q.Options[orig])
			}
		}
		if pq.OriginalIndices[pq.ShuffledAnswerIndex] != q.AnswerIndex {
			t.Fatalf("seed %d: shuffled answer index does not map back", seed)
		}
	}
}

func TestPresentKeepsShuffleForSameQuestion(t *testing.T) {
	q := domain.Question{ID: 1, Text: "Pick", Options: []string{"a", "b", "c", "d", "e", "f"}, AnswerIndex: 0}
	p := NewPresenter(rand.New(rand.NewSource(7)))
	first := p.Present(q)
	second := p.Present(q)
	if !slices.Equal(first.OriginalIndices, second.OriginalIndices) {
		t.Fatalf("expected stable permutation, got %v then %v", first.OriginalIndices, second.OriginalIndices)
	}

	other := q
	other.ID = 2
	p.Present(other)
	if cur, _ := p.Current(); cur.Question.ID != 2 {
		t.Fatalf("expected new question to be presented")
	}
}

func TestSelectLocksAfterFirstPick(t *testing.T) {
	p := NewPresenter(rand.New(rand.NewSource(1)))
	pq := p.Present(domain.Question{ID: 1, Options: []string{"x", "y", "z"}, AnswerIndex: 1})

	if _, err := p.Select(pq.ShuffledAnswerIndex); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := p.Select(0); !errors.Is(err, domain.ErrAlreadySelected) {
		t.Fatalf("expected ErrAlreadySelected, got %v", err)
	}
	sel, _ := p.Selection()
	if sel.Index != pq.ShuffledAnswerIndex || !sel.Correct || sel.RevealCorrect {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestWrongPickRevealsAndExplains(t *testing.T) {
	q := domain.Question{ID: 1, Options: []string{"x", "y"}, AnswerIndex: 0, ExplanationHTML: "because"}
	p := NewPresenter(rand.New(rand.NewSource(3)))
	pq := p.Present(q)
	wrong := 1 - pq.ShuffledAnswerIndex

	sel, err := p.Select(wrong)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Correct || !sel.RevealCorrect || !sel.ShowExplanation {
		t.Fatalf("expected reveal and explanation, got %+v", sel)
	}

	q.ExplanationHTML = ""
	q.ID = 2
	pq = p.Present(q)
	sel, _ = p.Select(1 - pq.ShuffledAnswerIndex)
	if !sel.RevealCorrect || sel.ShowExplanation {
		t.Fatalf("expected reveal without explanation, got %+v", sel)
	}
}

func TestContinueMapsBackToOriginalIndex(t *testing.T) {
	q := domain.Question{ID: 1, Options: []string{"same", "same", "same", "same"}, AnswerIndex: 2}
	p := NewPresenter(rand.New(rand.NewSource(11)))

	if _, err := p.Continue(); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection before presenting, got %v", err)
	}

	pq := p.Present(q)
	if _, err := p.Select(pq.ShuffledAnswerIndex); err != nil {
		t.Fatalf("select: %v", err)
	}
	original, err := p.Continue()
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if original != 2 {
		t.Fatalf("expected original index 2, got %d", original)
	}
	if _, ok := p.Selection(); ok {
		t.Fatalf("expected selection cleared after continue")
	}
	if _, err := p.Continue(); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection after continue, got %v", err)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	p := NewPresenter(nil)
	p.Present(domain.Question{ID: 1, Options: []string{"a", "b"}, AnswerIndex: 0})
	if _, err := p.Select(2); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
	if _, err := p.Select(-1); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
}
