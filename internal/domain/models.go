package domain

import "fmt"

// Question models a single-answer multiple choice question.
type Question struct {
	ID                     int      `json:"id"`
	Text                   string   `json:"question"`
	ExampleHTML            string   `json:"example,omitempty"`
	Options                []string `json:"options"`
	AnswerIndex            int      `json:"answer"`
	ExplanationHTML        string   `json:"explanation,omitempty"`
	ExampleExplanationHTML string   `json:"exampleExplanation,omitempty"`
	HeaderImage            string   `json:"headerimage,omitempty"`
}

// HasExplanation reports whether a wrong answer should open the explanation panel.
func (q Question) HasExplanation() bool {
	return q.ExplanationHTML != ""
}

// QuizDefinition is the immutable content of one quiz.
type QuizDefinition struct {
	ID               string     `json:"id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	HeaderImage      string     `json:"headerimage,omitempty"`
	HeaderImageWidth int        `json:"headerimageWidth,omitempty"`
	EstimatedTime    string     `json:"time,omitempty"`
	Questions        []Question `json:"questions"`
}

// Validate checks the option/answer invariants of every question.
func (q QuizDefinition) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuiz, i, len(question.Options))
		}
		if question.AnswerIndex < 0 || question.AnswerIndex >= len(question.Options) {
			return fmt.Errorf("%w: question %d answer %d out of range", ErrInvalidQuiz, i, question.AnswerIndex)
		}
	}
	return nil
}

// QuizMetadata is the selector-facing summary of a quiz.
type QuizMetadata struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
	EstimatedTime string `json:"time,omitempty"`
}

// MetadataFor builds selector metadata, filling the fallbacks for missing fields.
func MetadataFor(id string, def QuizDefinition) QuizMetadata {
	meta := QuizMetadata{
		ID:            id,
		Title:         def.Title,
		Description:   def.Description,
		QuestionCount: len(def.Questions),
		EstimatedTime: def.EstimatedTime,
	}
	if meta.Title == "" {
		meta.Title = "Quiz " + id
	}
	if meta.Description == "" {
		meta.Description = "No description available."
	}
	return meta
}

// ScoreSubmission is a learner's completed attempt as reported by a client.
type ScoreSubmission struct {
	QuizID         string `json:"quizId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Topic          string `json:"topic,omitempty"`
	QuizTitle      string `json:"quizTitle,omitempty"`
	AnonymousID    string `json:"anonymousId,omitempty"`
}

// ScoreRecord is one persisted attempt.
type ScoreRecord struct {
	QuizID         string `json:"quizId"`
	Topic          string `json:"topic"`
	QuizTitle      string `json:"quizTitle"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
	UserID         string `json:"userId"`
	Timestamp      int64  `json:"timestamp"` // unix millis
	Date           string `json:"date"`      // RFC 3339, UTC
}

// RecentScore is the projection of a record shown in the recent list.
type RecentScore struct {
	Percentage int    `json:"percentage"`
	Date       string `json:"date"`
}

// QuizStats summarises all stored attempts of a quiz.
type QuizStats struct {
	QuizID              string         `json:"quizId"`
	TotalAttempts       int            `json:"totalAttempts"`
	AverageScorePercent int            `json:"averageScore"`
	HighScorePercent    int            `json:"highScore"`
	Distribution        map[string]int `json:"distribution"`
	RecentScores        []RecentScore  `json:"recentScores"`
}
