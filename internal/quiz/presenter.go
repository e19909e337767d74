package quiz

import (
	"math/rand"
	"slices"
	"time"

	"quiz-widget-service/internal/domain"
)

// PresentedQuestion is a question with its options shuffled. OriginalIndices[i] is the
// index in Question.Options of the option shown at position i.
type PresentedQuestion struct {
	Question            domain.Question
	Options             []string
	OriginalIndices     []int
	ShuffledAnswerIndex int
}

// Selection is the learner's pick on the presented question.
type Selection struct {
	Index           int  `json:"index"`
	Correct         bool `json:"correct"`
	RevealCorrect   bool `json:"revealCorrect"`
	ShowExplanation bool `json:"showExplanation"`
}

// Presenter drives a single question: shuffle, one locked pick, reveal, continue.
// It is not safe for concurrent use; Player serialises access.
type Presenter struct {
	rnd       *rand.Rand
	current   *PresentedQuestion
	selection *Selection
}

// NewPresenter uses rnd for shuffling, or a time-seeded source when nil.
func NewPresenter(rnd *rand.Rand) *Presenter {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Presenter{rnd: rnd}
}

// Present returns the shuffled view of q. The permutation is kept while the same
// question is presented again and recomputed when the question changes.
func (p *Presenter) Present(q domain.Question) PresentedQuestion {
	if p.current != nil && sameQuestion(p.current.Question, q) {
		return *p.current
	}

	options := slices.Clone(q.Options)
	indices := make([]int, len(options))
	for i := range indices {
		indices[i] = i
	}
	for i := len(options) - 1; i > 0; i-- {
		j := p.rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
		indices[i], indices[j] = indices[j], indices[i]
	}

	answer := slices.Index(indices, q.AnswerIndex)
	p.current = &PresentedQuestion{
		Question:            q,
		Options:             options,
		OriginalIndices:     indices,
		ShuffledAnswerIndex: answer,
	}
	p.selection = nil
	return *p.current
}

// Current returns the presented question, if any.
func (p *Presenter) Current() (PresentedQuestion, bool) {
	if p.current == nil {
		return PresentedQuestion{}, false
	}
	return *p.current, true
}

// Selection returns the pick made on the current question, if any.
func (p *Presenter) Selection() (Selection, bool) {
	if p.selection == nil {
		return Selection{}, false
	}
	return *p.selection, true
}

// Select records the first pick for the current question; later picks are rejected.
func (p *Presenter) Select(shuffledIndex int) (Selection, error) {
	if p.current == nil {
		return Selection{}, domain.ErrNotInProgress
	}
	if p.selection != nil {
		return *p.selection, domain.ErrAlreadySelected
	}
	if shuffledIndex < 0 || shuffledIndex >= len(p.current.Options) {
		return Selection{}, domain.ErrOptionOutOfRange
	}

	sel := Selection{Index: shuffledIndex, Correct: shuffledIndex == p.current.ShuffledAnswerIndex}
	if !sel.Correct {
		sel.RevealCorrect = true
		sel.ShowExplanation = p.current.Question.HasExplanation()
	}
	p.selection = &sel
	return sel, nil
}

// Continue maps the pick back to the original option index and clears the pick.
func (p *Presenter) Continue() (int, error) {
	if p.current == nil || p.selection == nil {
		return 0, domain.ErrNoSelection
	}
	original := p.current.OriginalIndices[p.selection.Index]
	p.selection = nil
	return original, nil
}

// Reset forgets the current question so the next Present reshuffles.
func (p *Presenter) Reset() {
	p.current = nil
	p.selection = nil
}

func sameQuestion(a, b domain.Question) bool {
	return a.ID == b.ID && a.Text == b.Text && a.AnswerIndex == b.AnswerIndex && slices.Equal(a.Options, b.Options)
}
