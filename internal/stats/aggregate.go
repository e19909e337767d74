// Package stats computes attempt summaries for a quiz.
package stats

import (
	"math"

	"github.com/samber/lo"

	"quiz-widget-service/internal/domain"
)

// RecentLimit is how many of the newest records appear in RecentScores.
const RecentLimit = 10

// Bucket labels, in ascending order.
const (
	Bucket0to20   = "0-20"
	Bucket21to40  = "21-40"
	Bucket41to60  = "41-60"
	Bucket61to80  = "61-80"
	Bucket81to100 = "81-100"
)

// Buckets lists every distribution label in ascending order.
var Buckets = []string{Bucket0to20, Bucket21to40, Bucket41to60, Bucket61to80, Bucket81to100}

// Percentage converts a raw score to a rounded 0-100 percentage; 0 when total is 0.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// BucketFor returns the upper-inclusive bucket label for a percentage.
func BucketFor(percentage int) string {
	p := min(max(percentage, 0), 100)
	switch {
	case p <= 20:
		return Bucket0to20
	case p <= 40:
		return Bucket21to40
	case p <= 60:
		return Bucket41to60
	case p <= 80:
		return Bucket61to80
	default:
		return Bucket81to100
	}
}

// EmptyDistribution returns a distribution with every bucket present and zeroed.
func EmptyDistribution() map[string]int {
	dist := make(map[string]int, len(Buckets))
	for _, b := range Buckets {
		dist[b] = 0
	}
	return dist
}

// Empty is the zeroed stats shape returned for quizzes without attempts.
func Empty(quizID string) domain.QuizStats {
	return domain.QuizStats{
		QuizID:       quizID,
		Distribution: EmptyDistribution(),
		RecentScores: []domain.RecentScore{},
	}
}

// Aggregate summarises records given in storage order (oldest first).
func Aggregate(quizID string, records []domain.ScoreRecord) domain.QuizStats {
	out := Empty(quizID)
	if len(records) == 0 {
		return out
	}

	total := 0
	for _, r := range records {
		total += r.Percentage
		out.HighScorePercent = max(out.HighScorePercent, r.Percentage)
		out.Distribution[BucketFor(r.Percentage)]++
	}
	out.TotalAttempts = len(records)
	out.AverageScorePercent = int(math.Round(float64(total) / float64(len(records))))

	recent := records[max(len(records)-RecentLimit, 0):]
	out.RecentScores = lo.Map(recent, func(r domain.ScoreRecord, _ int) domain.RecentScore {
		return domain.RecentScore{Percentage: r.Percentage, Date: r.Date}
	})
	return out
}

// Merge folds locally observed stats into a pre-aggregated base for the same quiz.
// The average is weighted by attempt counts. RecentScores come from local only since
// the base carries no per-record ordering.
func Merge(base, local domain.QuizStats) domain.QuizStats {
	out := domain.QuizStats{
		QuizID:           base.QuizID,
		TotalAttempts:    base.TotalAttempts + local.TotalAttempts,
		HighScorePercent: max(base.HighScorePercent, local.HighScorePercent),
		Distribution:     EmptyDistribution(),
		RecentScores:     local.RecentScores,
	}
	if out.QuizID == "" {
		out.QuizID = local.QuizID
	}
	for _, b := range Buckets {
		out.Distribution[b] = base.Distribution[b] + local.Distribution[b]
	}
	if out.RecentScores == nil {
		out.RecentScores = []domain.RecentScore{}
	}

	if local.TotalAttempts == 0 {
		out.AverageScorePercent = base.AverageScorePercent
		return out
	}
	weighted := float64(base.AverageScorePercent*base.TotalAttempts + local.AverageScorePercent*local.TotalAttempts)
	out.AverageScorePercent = int(math.Round(weighted / float64(out.TotalAttempts)))
	return out
}
