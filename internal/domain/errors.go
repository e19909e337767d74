package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be located in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned for quiz documents that break the question invariants.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
	// ErrInvalidSubmission is returned when a score submission lacks required fields.
	ErrInvalidSubmission = errors.New("missing required fields")
	// ErrSessionNotFound is returned when a play session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNotInProgress is returned for question actions outside an active quiz.
	ErrNotInProgress = errors.New("quiz not in progress")
	// ErrAlreadySelected rejects a second pick on the same question.
	ErrAlreadySelected = errors.New("option already selected")
	// ErrNoSelection is returned when continuing before picking an option.
	ErrNoSelection = errors.New("no option selected")
	// ErrOptionOutOfRange indicates a pick outside the presented options.
	ErrOptionOutOfRange = errors.New("option out of range")
)
